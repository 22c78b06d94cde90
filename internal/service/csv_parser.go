package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
)

const (
	columnDate    = "date"
	columnUser    = "user"
	columnMessage = "message"

	maxUserNameLength = 100
	utf8BOM           = "\uFEFF"
)

// timestampLayouts are tried in order; layouts without a zone are read as UTC
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
}

// ParseChatCSV reads a Date,User,Message export into messages in file order.
// Header names are matched case-insensitively; extra columns are ignored.
func ParseChatCSV(r io.Reader) ([]*domain.Message, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("CSV must include a header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range normalizeHeader(header) {
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	for _, key := range []string{columnDate, columnUser, columnMessage} {
		if _, ok := idx[key]; !ok {
			return nil, fmt.Errorf("missing required column: %s", key)
		}
	}

	var messages []*domain.Message
	for rowNumber := 2; ; rowNumber++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNumber, err)
		}

		msg, err := parseMessageRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNumber, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		out[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return out
}

func parseMessageRow(row []string, idx map[string]int) (*domain.Message, error) {
	get := func(key string) (string, bool) {
		pos := idx[key]
		if pos >= len(row) {
			return "", false
		}
		return row[pos], true
	}

	rawDate, ok := get(columnDate)
	if !ok {
		return nil, errors.New("missing Date value")
	}
	sentAt, err := parseTimestamp(rawDate)
	if err != nil {
		return nil, fmt.Errorf("invalid Date: %w", err)
	}

	user, ok := get(columnUser)
	user = strings.TrimSpace(user)
	if !ok || user == "" {
		return nil, errors.New("missing User value")
	}
	if utf8.RuneCountInString(user) > maxUserNameLength {
		return nil, fmt.Errorf("User longer than %d characters", maxUserNameLength)
	}

	text, ok := get(columnMessage)
	if !ok {
		return nil, errors.New("missing Message value")
	}

	return &domain.Message{SentAt: sentAt, UserName: user, Text: text}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported format: %s", value)
}
