// Package importer reads task drafts from JSON streams and Org-mode files.
package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/tasknotify/pkg/model"
)

const taskwarriorTimeLayout = "20060102T150405Z"

// Date accepts epoch milliseconds, an RFC 3339 string or a Taskwarrior
// timestamp (YYYYMMDDTHHMMSSZ).
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if b[0] != '"' {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse epoch milliseconds '%s': %w", s, err)
		}
		d.Time = time.UnixMilli(ms)
		return nil
	}
	for _, layout := range []string{time.RFC3339, taskwarriorTimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("failed to parse date '%s'", s)
}

type jsonDraft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        Date   `json:"date"`
}

func (j jsonDraft) draft() model.Draft {
	var ms int64
	if !j.Date.IsZero() {
		ms = j.Date.UnixMilli()
	}
	return model.Draft{Name: j.Name, Description: j.Description, Date: ms}
}

// DecodeJSON reads either a JSON array of drafts or a stream of draft objects.
func DecodeJSON(r io.Reader) ([]model.Draft, error) {
	br := bufio.NewReader(r)
	if first, err := peekNonSpace(br); err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, err
	} else if first == '[' {
		var list []jsonDraft
		if err := json.NewDecoder(br).Decode(&list); err != nil {
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		drafts := make([]model.Draft, 0, len(list))
		for _, j := range list {
			drafts = append(drafts, j.draft())
		}
		return drafts, nil
	}

	var drafts []model.Draft
	decoder := json.NewDecoder(br)
	for {
		var j jsonDraft
		if err := decoder.Decode(&j); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		drafts = append(drafts, j.draft())
	}
	return drafts, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], nil
		}
		if _, err := br.Discard(1); err != nil {
			return 0, err
		}
	}
}
