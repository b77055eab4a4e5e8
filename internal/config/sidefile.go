package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
)

// commentPair matches a commented "KEY: value" or "KEY = value" line.
// Comment markers: #, //, ;.
var commentPair = regexp.MustCompile(`^\s*(?:#+|//+|;+)\s*([A-Z][A-Z0-9_]*)\s*[:=]\s*(.*?)\s*$`)

// sideFile holds the values found in the side-file.
//
// Commented pairs take precedence over JSONC members, so a file can carry
// a real JSONC object with overrides written as comments above it.
type sideFile struct {
	comments map[string]string
	members  map[string]string
}

// readSideFile reads and parses path. A missing or unreadable file yields an
// empty sideFile and false.
func readSideFile(path string) (sideFile, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sideFile{}, false
	}

	return parseSideFile(data), true
}

func parseSideFile(data []byte) sideFile {
	sf := sideFile{
		comments: parseCommentPairs(data),
		members:  parseJSONCMembers(data),
	}

	return sf
}

// parseCommentPairs scans data line by line. Only known keys are kept; the
// first occurrence of a key wins.
func parseCommentPairs(data []byte) map[string]string {
	pairs := make(map[string]string)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m := commentPair.FindStringSubmatch(scanner.Text())
		if m == nil || !isKnownKey(m[1]) {
			continue
		}

		if _, seen := pairs[m[1]]; seen {
			continue
		}

		pairs[m[1]] = unquote(strings.TrimSuffix(m[2], ","))
	}

	return pairs
}

// parseJSONCMembers returns the top-level members of a JSONC object whose
// names are known keys. Anything that is not a JSONC object yields nil.
func parseJSONCMembers(data []byte) map[string]string {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil
	}

	var raw map[string]any

	if err := json.Unmarshal(standardized, &raw); err != nil {
		return nil
	}

	members := make(map[string]string)

	for key, val := range raw {
		if !isKnownKey(key) {
			continue
		}

		switch v := val.(type) {
		case string:
			members[key] = v
		case float64:
			members[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			members[key] = strconv.FormatBool(v)
		}
	}

	return members
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}

	return s
}
