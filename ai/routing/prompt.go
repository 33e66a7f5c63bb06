package routing

import (
	"fmt"
	"strings"
)

const interpretTemplate = `You are an AI system that understands user commands in natural language.
You support the following options (%s):

%s

You will be given a textual command from a user.
Your job is to return the option number (1 to %d),
or "None" if it does not match any of the supported options.

Now process this command:
%q
`

const structuredTemplate = `You are an AI assistant for a to-do list app. The user is choosing %s.

The supported options are:

%s

Your job is to return a VALID JSON object in this exact format:

{
  "status": "specific" | "ambiguous",
  "message": "Response to show the user",
  "choice": "%s" | null
}

Guidelines:
- If the user clearly picks one option, set "status" to "specific" and "choice" to its number.
- If the user is vague, set "status" to "ambiguous", "choice" to null, and write a
  "message" telling the user the request is not specific enough and listing the options.

IMPORTANT:
- Do not return explanations or extra text, just the valid JSON object.

Now process this command:
%q
`

func buildPrompt(utterance string, set OptionSet) string {
	if set.Structured {
		codes := make([]string, 0, len(set.Options))
		for _, o := range set.Options {
			codes = append(codes, fmt.Sprint(o.Code))
		}
		return fmt.Sprintf(structuredTemplate, set.Subject, set.Render(), strings.Join(codes, `" | "`), utterance)
	}
	return fmt.Sprintf(interpretTemplate, set.Subject, set.Render(), len(set.Options), utterance)
}
