package main

import (
	"fmt"
	"os"

	"task-tracker/cmd/taskui/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
)

func main() {
	server := pflag.StringP("server", "s", "http://localhost:3001", "Task tracker API base URL")
	sessionFile := pflag.String("session-file", ui.DefaultSessionPath(), "Where the login token is kept between runs")
	logPath := pflag.String("log", "", "Append client logs to this file")
	pflag.Parse()

	closer, err := ui.InitLog(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log:", err)
		os.Exit(1)
	}
	defer closer.Close()

	m := ui.NewRootModel(ui.NewClient(*server), ui.SessionStore{Path: *sessionFile})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		ui.Log.Error().Err(err).Msg("ui stopped")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
