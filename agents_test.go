package main

import (
	"fmt"
	"strings"
	"testing"
)

func TestAdviceMessage(t *testing.T) {
	msg := adviceMessage(adviceInput{
		MatchPercentage:    33.61,
		MissingKeywords:    []string{"engineer", "kubernetes"},
		ResumeText:         "Go developer",
		JobDescriptionText: "Go engineer with Kubernetes",
	})
	for _, want := range []string{
		"Match percentage: 33.61",
		"Missing keywords: engineer, kubernetes",
		"Job Description:\nGo engineer with Kubernetes",
		"Resume:\nGo developer",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestAdviceMessageLimits(t *testing.T) {
	var keywords []string
	for i := range maxAdviceKeywords + 10 {
		keywords = append(keywords, fmt.Sprintf("kw%d", i))
	}
	msg := adviceMessage(adviceInput{
		MissingKeywords: keywords,
		ResumeText:      strings.Repeat("é", maxAdviceTextRunes+100),
	})
	if strings.Contains(msg, fmt.Sprintf("kw%d", maxAdviceKeywords)) {
		t.Error("keywords past the limit should be dropped")
	}
	if n := strings.Count(msg, "é"); n != maxAdviceTextRunes {
		t.Errorf("resume runes = %d, want %d", n, maxAdviceTextRunes)
	}

	if msg := adviceMessage(adviceInput{}); !strings.Contains(msg, "Missing keywords: none") {
		t.Errorf("empty keywords should read none:\n%s", msg)
	}
}

func TestParseAdvice(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{"plain", `{"recommendation":"Add Kubernetes projects."}`, "Add Kubernetes projects.", false},
		{"fenced", "```json\n{\"recommendation\": \"  Lead with Go.  \"}\n```", "Lead with Go.", false},
		{"empty recommendation", `{"recommendation":""}`, "", true},
		{"not json", "Sure! Here is my advice.", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAdvice(tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseAdvice = %q, want %q", got, tt.want)
			}
		})
	}
}
