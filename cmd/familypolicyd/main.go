// Command familypolicyd is the cross-platform family-policy agent: it
// polls a remote policy document, reconciles Chrome/Firefox/Edge managed
// settings against it, and optionally tracks and enforces per-child
// screen-time limits. Subcommand dispatch here replaces the teacher's
// flat flag.Bool-per-feature main.go (one binary flag per action) with
// one subcommand per concern, following the per-OS command dispatch in
// original_source/src/commands/agent.rs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/emosenkis/family-policy/internal/cli"
	"github.com/emosenkis/family-policy/internal/install"
)

func usage() {
	fmt.Fprintln(os.Stderr, `familypolicyd — cross-platform family policy agent

Usage:
  familypolicyd apply [--config PATH] [--uninstall] [--dry-run]
  familypolicyd check-now [--config PATH] [--dry-run]
  familypolicyd config init [--output PATH] [--force]
  familypolicyd install-service
  familypolicyd uninstall-service
  familypolicyd start [--config PATH] [--no-daemon]
  familypolicyd stop
  familypolicyd status
  familypolicyd show-config [--config PATH]
  familypolicyd time-limits init [--path PATH] --password PASSWORD [--force]
  familypolicyd time-limits add-child --id ID --name NAME [--os-user USER ...] --weekday-hours N --weekend-hours N [--path PATH]
  familypolicyd time-limits set-password --password PASSWORD [--path PATH]
  familypolicyd time-limits history --child ID
  familypolicyd time-limits status [--socket PATH]
  familypolicyd time-limits grant-extension --child ID --minutes N --password PASSWORD [--reason TEXT] [--socket PATH]
  familypolicyd time-limits reset-time --child ID --password PASSWORD [--socket PATH]`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	if err := dispatch(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func dispatch(cmd string, args []string) error {
	switch cmd {
	case "apply":
		return runApply(args)
	case "check-now":
		fs := flag.NewFlagSet("check-now", flag.ExitOnError)
		cfgPath := fs.String("config", "", "path to agent config (default: platform config dir)")
		dryRun := fs.Bool("dry-run", false, "compute the reconcile without writing any surface or state file")
		fs.Parse(args)
		return cli.RunApply(*cfgPath, false, *dryRun)
	case "config":
		return runConfig(args)
	case "install-service":
		if !install.RunningAsRoot(true) {
			return fmt.Errorf("install-service requires root/administrator privileges")
		}
		if err := install.Install(); err != nil {
			return err
		}
		fmt.Println("service installed")
		return nil
	case "uninstall-service":
		if !install.RunningAsRoot(true) {
			return fmt.Errorf("uninstall-service requires root/administrator privileges")
		}
		if err := install.Uninstall(); err != nil {
			return err
		}
		fmt.Println("service uninstalled")
		return nil
	case "start":
		return runStart(args)
	case "stop":
		if !install.RunningAsRoot(true) {
			return fmt.Errorf("stop requires root/administrator privileges")
		}
		if err := install.Stop(); err != nil {
			return err
		}
		fmt.Println("service stopped")
		return nil
	case "status":
		out, err := cli.RunStatus()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	case "show-config":
		return runShowConfig(args)
	case "time-limits":
		return runTimeLimits(args)
	case "-h", "--help", "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to agent config (default: platform config dir)")
	uninstall := fs.Bool("uninstall", false, "remove every currently-applied browser surface instead of applying")
	dryRun := fs.Bool("dry-run", false, "don't write any file or browser surface")
	fs.Parse(args)
	return cli.RunApply(*cfgPath, *uninstall, *dryRun)
}

func runConfig(args []string) error {
	if len(args) == 0 || args[0] != "init" {
		return fmt.Errorf("usage: familypolicyd config init [--output PATH] [--force]")
	}
	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	output := fs.String("output", "", "output path (default: platform config dir)")
	force := fs.Bool("force", false, "overwrite an existing file")
	fs.Parse(args[1:])
	return cli.RunConfigInit(*output, *force)
}

func runStart(args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to agent config (default: platform config dir)")
	noDaemon := fs.Bool("no-daemon", false, "run in the foreground instead of as an installed service")
	fs.Parse(args)
	if !*noDaemon {
		if !install.RunningAsRoot(true) {
			return fmt.Errorf("start requires root/administrator privileges (or pass --no-daemon to run in the foreground)")
		}
		if err := install.Start(); err != nil {
			return err
		}
		fmt.Println("service started")
		return nil
	}
	return cli.RunForeground(*cfgPath)
}

func runShowConfig(args []string) error {
	fs := flag.NewFlagSet("show-config", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to agent config (default: platform config dir)")
	fs.Parse(args)
	out, err := cli.RunShowConfig(*cfgPath)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runTimeLimits(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: familypolicyd time-limits {init|add-child|set-password|history|status|grant-extension|reset-time}")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "init":
		fs := flag.NewFlagSet("time-limits init", flag.ExitOnError)
		path := fs.String("path", "", "time-limits config path (default: platform config dir)")
		password := fs.String("password", "", "initial admin password")
		force := fs.Bool("force", false, "overwrite an existing file")
		fs.Parse(rest)
		if *password == "" {
			return fmt.Errorf("--password is required")
		}
		return cli.RunTimeLimitsInit(*path, *password, *force)

	case "add-child":
		fs := flag.NewFlagSet("time-limits add-child", flag.ExitOnError)
		path := fs.String("path", "", "time-limits config path (default: platform config dir)")
		id := fs.String("id", "", "child identifier")
		name := fs.String("name", "", "display name")
		var osUsers stringList
		fs.Var(&osUsers, "os-user", "OS login name belonging to this child (repeatable)")
		weekdayHours := fs.Uint("weekday-hours", 0, "weekday daily limit in hours")
		weekendHours := fs.Uint("weekend-hours", 0, "weekend daily limit in hours")
		fs.Parse(rest)
		if *id == "" || *name == "" {
			return fmt.Errorf("--id and --name are required")
		}
		return cli.RunTimeLimitsAddChild(*path, *id, *name, osUsers, uint32(*weekdayHours), uint32(*weekendHours))

	case "set-password":
		fs := flag.NewFlagSet("time-limits set-password", flag.ExitOnError)
		path := fs.String("path", "", "time-limits config path (default: platform config dir)")
		password := fs.String("password", "", "new admin password")
		fs.Parse(rest)
		if *password == "" {
			return fmt.Errorf("--password is required")
		}
		return cli.RunTimeLimitsSetPassword(*path, *password)

	case "history":
		fs := flag.NewFlagSet("time-limits history", flag.ExitOnError)
		child := fs.String("child", "", "child identifier")
		fs.Parse(rest)
		if *child == "" {
			return fmt.Errorf("--child is required")
		}
		out, err := cli.RunTimeLimitsHistory(*child)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil

	case "status":
		fs := flag.NewFlagSet("time-limits status", flag.ExitOnError)
		socket := fs.String("socket", "", "admin socket path (default: platform default)")
		fs.Parse(rest)
		out, err := cli.RunTimeLimitsStatus(*socket)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil

	case "grant-extension":
		fs := flag.NewFlagSet("time-limits grant-extension", flag.ExitOnError)
		socket := fs.String("socket", "", "admin socket path (default: platform default)")
		child := fs.String("child", "", "child identifier")
		minutes := fs.Uint("minutes", 0, "additional minutes to grant")
		password := fs.String("password", "", "admin password")
		reason := fs.String("reason", "", "optional reason, recorded in the usage history")
		fs.Parse(rest)
		if *child == "" || *password == "" {
			return fmt.Errorf("--child and --password are required")
		}
		out, err := cli.RunTimeLimitsGrantExtension(*socket, *child, uint32(*minutes), *password, *reason)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil

	case "reset-time":
		fs := flag.NewFlagSet("time-limits reset-time", flag.ExitOnError)
		socket := fs.String("socket", "", "admin socket path (default: platform default)")
		child := fs.String("child", "", "child identifier")
		password := fs.String("password", "", "admin password")
		fs.Parse(rest)
		if *child == "" || *password == "" {
			return fmt.Errorf("--child and --password are required")
		}
		out, err := cli.RunTimeLimitsResetTime(*socket, *child, *password)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil

	default:
		return fmt.Errorf("unknown time-limits subcommand %q", sub)
	}
}

// stringList implements flag.Value for a repeatable --os-user flag.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
