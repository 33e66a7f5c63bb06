package routing

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/hrygo/taskgpt/ai/internal/strutil"
)

// leadingCodeRe matches "2", "2.", "2)", "2: Add task", "Option 2 - Add".
var leadingCodeRe = regexp.MustCompile(`^(?:option\s*)?(\d+)(?:\s*[.):\-]|\s|$)`)

type structuredReply struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Choice  json.RawMessage `json:"choice"`
}

// parseReply maps a raw model reply onto set. Anything it cannot read is
// Unrecognized.
func parseReply(reply string, set OptionSet) Classification {
	if obj := strutil.JSONObject(reply); obj != "" {
		return parseStructured(obj, set)
	}
	if code := parseCode(reply, set); code > 0 {
		return Classification{Status: StatusSpecific, Code: code}
	}
	return Unrecognized
}

func parseStructured(obj string, set OptionSet) Classification {
	var r structuredReply
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		return Unrecognized
	}
	message := strings.TrimSpace(r.Message)
	if code := parseChoice(r.Choice, set); code > 0 {
		return Classification{Status: StatusSpecific, Code: code, Message: message}
	}
	if strings.EqualFold(strings.TrimSpace(r.Status), string(StatusAmbiguous)) {
		return Classification{Status: StatusAmbiguous, Message: message}
	}
	return Classification{Status: StatusSpecific, Message: message}
}

// parseChoice accepts a number, a numeric string or a label.
func parseChoice(raw json.RawMessage, set OptionSet) int {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if set.Contains(n) {
			return n
		}
		return 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	return parseCode(s, set)
}

func parseCode(reply string, set OptionSet) int {
	s := strings.Trim(strutil.StripCodeFence(reply), " \t\r\n\"'`*")
	folded := strutil.FoldTitle(s)
	if folded == "" || folded == "none" || folded == "null" {
		return 0
	}
	if m := leadingCodeRe.FindStringSubmatch(folded); m != nil {
		code, err := strconv.Atoi(m[1])
		if err == nil && set.Contains(code) {
			return code
		}
		return 0
	}
	return matchLabel(strings.TrimRight(folded, ".!"), set)
}
