package workflow_test

import (
	"fmt"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/workflow"
)

func ExampleNext() {
	state := domain.StateEmailInput
	for _, ev := range []workflow.Event{workflow.EventEmailAccepted, workflow.EventClassified, workflow.EventFormNeedsReview} {
		next, err := workflow.Next(state, ev)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%s -> %s\n", state, next)
		state = next
	}

	_, err := workflow.Next(domain.StateSubmittedRequest, workflow.EventEdit)
	fmt.Println(err != nil)
	// Output:
	// email_input -> classification
	// classification -> form
	// form -> review
	// true
}

func ExampleAssess() {
	issues := domain.Issues{
		{FieldKey: "budget", Severity: domain.SeverityInfo},
		{FieldKey: "deadline", Severity: domain.SeverityWarning},
	}
	fmt.Println(workflow.Assess(issues))

	issues = append(issues, domain.ValidationIssue{FieldKey: "title", Severity: domain.SeverityError})
	fmt.Println(workflow.Assess(issues))
	// Output:
	// review
	// blocked
}
