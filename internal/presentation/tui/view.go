package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/workflow"
)

var stateTitles = map[domain.State]string{
	domain.StateLoading:                 "Loading",
	domain.StateEmailInput:              "Waiting for the requester email",
	domain.StateClassification:          "Classification",
	domain.StateForm:                    "Form",
	domain.StateReview:                  "Review of warnings",
	domain.StateSubmittedRequest:        "Submitted",
	domain.StateAlreadySubmittedRequest: "Already submitted",
}

// ViewMarkdown renders a controller view as a markdown summary.
func ViewMarkdown(v workflow.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Change request `%s`\n\n", v.SessionID)

	title := stateTitles[v.State]
	if title == "" {
		title = string(v.State)
	}
	fmt.Fprintf(&b, "- **State:** %s\n", title)
	fmt.Fprintf(&b, "- **Project class:** %s\n", v.ProjectClass)
	if v.RequesterEmail != "" {
		fmt.Fprintf(&b, "- **Requester:** %s\n", v.RequesterEmail)
	}
	if v.SubmittedSessionID != "" {
		fmt.Fprintf(&b, "- **Submitted as:** `%s`\n", v.SubmittedSessionID)
	}
	if v.Busy {
		b.WriteString("- _busy_\n")
	}

	if v.Message != "" {
		fmt.Fprintf(&b, "\n> %s\n", v.Message)
	}
	if v.EmailError != "" {
		fmt.Fprintf(&b, "\n> %s\n", v.EmailError)
	}

	if len(v.FormValues) > 0 {
		b.WriteString("\n## Form\n\n| Field | Value |\n|---|---|\n")
		keys := make([]string, 0, len(v.FormValues))
		for k := range v.FormValues {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %s |\n", k, cell(v.FormValues[k]))
		}
	}

	if len(v.Issues) > 0 {
		b.WriteString("\n## Issues\n\n")
		for _, is := range v.Issues {
			label := is.FieldLabel
			if label == "" {
				label = is.FieldKey
			}
			fmt.Fprintf(&b, "- **%s** %s: %s\n", is.Severity, label, is.Message)
		}
	}
	return b.String()
}

// cell keeps a value on one table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
