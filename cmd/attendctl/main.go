package main

import (
	"context"

	"github.com/alecthomas/kong"
)

type globals struct {
	Config    string `type:"path" help:"YAML configuration file."`
	EnvFile   string `type:"path" default:".env" help:"Dotenv file layered under ATTEND_* variables (ignored when missing)."`
	BaseURL   string `help:"Attendance API base URL (overrides config)."`
	Locale    string `help:"Message locale (en, zh, zh-tw)."`
	ThemeFile string `type:"path" help:"Persist the theme preference in this YAML file."`
	RedisAddr string `help:"Persist the theme preference in Redis at this address."`
	Breaker   bool   `help:"Guard API requests with a circuit breaker."`
	Demo      bool   `help:"Use the in-memory demo backend instead of the API."`
	Debug     bool   `help:"Log debug telemetry."`
}

type cli struct {
	globals `embed:""`

	Shell shellCmd `cmd:"" default:"1" help:"Interactive attendance client."`
	Serve serveCmd `cmd:"" help:"Serve the attendance console over HTTP."`
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("attendctl"),
		kong.Description("Client for the course attendance API."),
		kong.UsageOnError(),
		kong.Bind(&root.globals),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
