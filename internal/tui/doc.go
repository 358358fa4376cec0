// Package tui provides nova's interactive shell.
//
// The shell reads one line at a time. Lines starting with a slash are
// commands; anything else is a request. In personal mode a request is routed
// to a single persona, optionally addressed with a leading @persona_key. In
// company mode a request is a project brief and starts a new project.
//
// Usage:
//
//	c, _ := core.Open(ctx, cfg, logger)
//	defer c.Close()
//	if err := tui.Run(ctx, c); err != nil {
//	    log.Fatal(err)
//	}
//
// Every reply is computed off the UI goroutine, so slow model calls never
// block key handling. Only one request runs at a time.
package tui
