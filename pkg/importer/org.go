package importer

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/tasknotify/pkg/model"
)

var (
	todoRegex     = regexp.MustCompile(`^\*+ TODO\s+(?:\[#[A-Z]\]\s*)?(.*?)(?:\s+:[\w:]+:)?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})\s+[A-Za-z]{2,3}\.?\s+(\d{1,2}:\d{2})[^>]*>`)
)

// ParseOrg turns "* TODO" headlines with a timed DEADLINE into drafts. The
// first plain text line under a headline becomes the description. Deadlines
// are read as wall-clock times in loc.
func ParseOrg(r io.Reader, loc *time.Location) ([]model.Draft, error) {
	scanner := bufio.NewScanner(r)
	var drafts []model.Draft
	var current *model.Draft
	inDrawer := false

	flush := func() {
		if current != nil && current.Name != "" && current.Date > 0 {
			drafts = append(drafts, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") && strings.Contains(line, " ") && strings.Trim(line[:strings.Index(line, " ")], "*") == "" {
			flush()
			inDrawer = false
			if matches := todoRegex.FindStringSubmatch(line); len(matches) > 0 {
				current = &model.Draft{Name: strings.TrimSpace(matches[1])}
			}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case line == ":END:":
			inDrawer = false
		case strings.HasPrefix(line, ":") && strings.HasSuffix(line, ":"):
			inDrawer = true
		case inDrawer:
		case deadlineRegex.MatchString(line):
			matches := deadlineRegex.FindStringSubmatch(line)
			deadline, err := time.ParseInLocation("2006-01-02 15:04", matches[1]+" "+matches[2], loc)
			if err == nil {
				current.Date = deadline.UnixMilli()
			}
		case strings.HasPrefix(line, "SCHEDULED:") || strings.HasPrefix(line, "CLOSED:"):
		case line != "" && current.Description == "":
			current.Description = line
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}

// ParseOrgFiles parses each file in turn.
func ParseOrgFiles(paths []string, loc *time.Location) ([]model.Draft, error) {
	var all []model.Draft
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		drafts, err := ParseOrg(f, loc)
		f.Close()
		if err != nil {
			return nil, err
		}
		all = append(all, drafts...)
	}
	return all, nil
}
