// Command profilectl inspects a provider profile through the marketplace API
// using the same client and draft controller as the mobile app.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/janisto/provider-profile/internal/client"
	"github.com/janisto/provider-profile/internal/platform/config"
	applog "github.com/janisto/provider-profile/internal/platform/logging"
	"github.com/janisto/provider-profile/internal/platform/session"
	"github.com/janisto/provider-profile/internal/profile"
	"github.com/janisto/provider-profile/internal/profile/draft"
	"github.com/janisto/provider-profile/internal/profile/hours"
	"github.com/janisto/provider-profile/internal/profile/validate"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const usage = `usage: profilectl [-token TOKEN] <command>

commands:
  show     print the current profile
  catalog  print the service catalog
  check    validate the current profile and list problems
`

// errInvalid is returned by check when the profile has validation errors.
var errInvalid = errors.New("profile has validation errors")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		applog.LogWarn(ctx, "ignoring unreadable .env", zap.Error(err))
	}
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	_ = applog.Sync()
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "profilectl:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fset := flag.NewFlagSet("profilectl", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() { fmt.Fprint(stderr, usage) }
	token := fset.String("token", os.Getenv("PROFILE_API_TOKEN"), "bearer token (default $PROFILE_API_TOKEN)")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 1 {
		fset.Usage()
		return errors.New("expected exactly one command")
	}

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	sess := session.NewMemory(*token)
	remote := client.NewClient(
		&http.Client{Timeout: cfg.Timeout},
		sess,
		client.WithBaseURL(cfg.BaseURL),
		client.WithUserAgent("profilectl/"+Version),
	)
	ctl := draft.New(remote, sess,
		draft.WithTowns(cfg.Towns),
		draft.WithLogger(applog.Logger()),
	)
	defer ctl.Close()

	switch cmd := fset.Arg(0); cmd {
	case "show":
		if err := ctl.Refresh(ctx); err != nil {
			return err
		}
		return writeJSON(stdout, ctl.State().Snapshot)
	case "catalog":
		cat, err := ctl.LoadCatalog(ctx)
		if err != nil {
			return err
		}
		return writeJSON(stdout, cat)
	case "check":
		if err := ctl.Refresh(ctx); err != nil {
			return err
		}
		st := ctl.State()
		problems := check(st.Snapshot, st.Towns)
		if err := writeJSON(stdout, problems); err != nil {
			return err
		}
		if len(problems) > 0 {
			return errInvalid
		}
		return nil
	default:
		fset.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// check runs the section validators over a fetched profile and flattens the
// results into one map keyed like the draft's error keys.
func check(snap *profile.Snapshot, towns []string) profile.Errors {
	out := profile.Errors{}
	if snap == nil {
		return out
	}
	maps.Copy(out, validate.Identity(snap.Identity))
	maps.Copy(out, validate.Business(snap.Business, towns))
	for platform, msg := range validate.SocialLinks(snap.SocialLinks) {
		out["social."+platform] = msg
	}
	for day, msg := range hours.Validate(snap.OperatingHours) {
		out["hours."+day] = msg
	}
	for i, svc := range snap.Services {
		for field, msg := range validate.Service(svc) {
			out["services."+strconv.Itoa(i)+"."+field] = msg
		}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
