package chat

import (
	"fmt"
	"strconv"
	"strings"
)

const tagSep = ":"

// tag is a selection tag split on ':'. The first segment names the family;
// numeric ids sit at fixed positions per action.
type tag []string

func parseTag(s string) tag {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, tagSep)
}

func (t tag) at(i int) string {
	if i < 0 || i >= len(t) {
		return ""
	}
	return t[i]
}

func (t tag) id(i int) (int64, bool) {
	n, err := strconv.ParseInt(t.at(i), 10, 64)
	return n, err == nil && n > 0
}

// from rejoins the segments starting at i, used to unwrap cancel:<tag>.
func (t tag) from(i int) string {
	if i >= len(t) {
		return ""
	}
	return strings.Join(t[i:], tagSep)
}

func tagf(format string, a ...any) string { return fmt.Sprintf(format, a...) }
