package calltype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		transcript string
		summary    string
		want       CallType
	}{
		{
			"repair",
			"my furnace is broken and not heating, I need someone to fix it",
			"",
			ServiceRepair,
		},
		{
			"estimate",
			"looking for a quote on a new system, how much would installation cost",
			"",
			InstallEstimate,
		},
		{
			"maintenance",
			"I'd like to schedule my annual tune-up and inspection",
			"",
			Maintenance,
		},
		{
			"reschedule",
			"I need to reschedule my appointment to a different time",
			"",
			AppointmentChange,
		},
		{
			"no keywords",
			"hello is this the right number",
			"",
			Other,
		},
		{
			"summary contributes",
			"",
			"caller asked about a maintenance plan",
			Maintenance,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.transcript, tc.summary)
			assert.Equal(t, tc.want, got.CallType, got.Reasoning)
		})
	}
}

func TestClassifyConfidence(t *testing.T) {
	assert.Equal(t, 0.5, Classify("hello there", "").Confidence, "no matches")
	assert.Equal(t, 0.6, Classify("there is a leak", "").Confidence, "single match")

	// Many matches cap at 0.95.
	many := Classify("broken, not working, repair, fix, leak, emergency, urgent, malfunction, issue, problem", "")
	assert.Equal(t, 0.95, many.Confidence)
}

func TestClassifyDeterministic(t *testing.T) {
	in := "broken furnace, need a repair quote"
	first := Classify(in, "")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(in, ""))
	}
}
