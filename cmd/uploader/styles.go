package main

import "github.com/charmbracelet/lipgloss"

var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "2"}
	colorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	colorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "6", Dark: "6"}
	colorWarning = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}

	styleTitle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Underline(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleInfo    = lipgloss.NewStyle().Foreground(colorInfo)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
)

func formatSuccess(msg string) string { return styleSuccess.Render("✔ " + msg) }

func formatError(msg string) string { return styleError.Render("✘ " + msg) }

func formatInfo(msg string) string { return styleInfo.Render("ℹ " + msg) }

func formatWarning(msg string) string { return styleWarning.Render("⚠ " + msg) }
