package command

// NewDefault builds the router with the session commands and help.
func NewDefault() *Router {
	r := New([]Command{
		NewStatsCommand(),
		NewHistoryCommand(),
		NewLogsCommand(),
		NewResetCommand(),
		NewToolsCommand(),
	})
	help := NewHelpCommand(r)
	r.commands[help.Name()] = help
	return r
}
