package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const (
	advisorAgentName = "match advisor"
	advisorUserID    = "joblens"

	maxAdviceTextRunes = 8000
	maxAdviceKeywords  = 50
)

type adviceInput struct {
	MatchPercentage    float64
	MissingKeywords    []string
	ResumeText         string
	JobDescriptionText string
}

func GetAgent(ctx context.Context, apiKey, modelName, agentName string) (agent.Agent, error) {
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	advisorAgent, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Explain a resume match score",
		Instruction: prompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return advisorAgent, nil
}

// agentAdvisor writes a short recommendation for a scored analysis.
type agentAdvisor struct {
	appName  string
	runner   *runner.Runner
	sessions session.Service
}

func newAgentAdvisor(ctx context.Context, apiKey, modelName string) (*agentAdvisor, error) {
	a, err := GetAgent(ctx, apiKey, modelName, advisorAgentName)
	if err != nil {
		return nil, err
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        a.Name(),
		Agent:          a,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	return &agentAdvisor{appName: a.Name(), runner: r, sessions: sessions}, nil
}

func (a *agentAdvisor) Advise(ctx context.Context, in adviceInput) (string, error) {
	created, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   a.appName,
		UserID:    advisorUserID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	sess := created.Session
	defer a.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
		AppName:   sess.AppName(),
		UserID:    sess.UserID(),
		SessionID: sess.ID(),
	})

	msg := adviceMessage(in)
	output, err := retry(ctx, 2, func() (string, error) {
		stream := a.runner.Run(ctx, sess.UserID(), sess.ID(), &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: msg}},
		}, agent.RunConfig{})

		var output string
		for event, err := range stream {
			if err != nil {
				return "", err
			}
			if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
				output = event.Content.Parts[0].Text
			}
		}
		if output == "" {
			return "", fmt.Errorf("empty agent response")
		}
		return output, nil
	})
	if err != nil {
		return "", fmt.Errorf("agent stream error: %w", err)
	}
	return parseAdvice(output)
}

func adviceMessage(in adviceInput) string {
	keywords := in.MissingKeywords
	if len(keywords) > maxAdviceKeywords {
		keywords = keywords[:maxAdviceKeywords]
	}
	missing := strings.Join(keywords, ", ")
	if missing == "" {
		missing = "none"
	}
	return fmt.Sprintf(
		"Match percentage: %.2f\nMissing keywords: %s\n\nJob Description:\n%s\n\nResume:\n%s",
		in.MatchPercentage,
		missing,
		truncateRunes(in.JobDescriptionText, maxAdviceTextRunes),
		truncateRunes(in.ResumeText, maxAdviceTextRunes),
	)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func parseAdvice(output string) (string, error) {
	var advice struct {
		Recommendation string `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(CleanJson(output)), &advice); err != nil {
		return "", fmt.Errorf("failed to decode agent response: %w", err)
	}
	rec := strings.TrimSpace(advice.Recommendation)
	if rec == "" {
		return "", fmt.Errorf("agent response has no recommendation")
	}
	return rec, nil
}
