// Command lockcheck is a manual test harness for the platform lock
// adaptor, adapted from the teacher's cmd/glocklock standalone screen-lock
// utility.
//
// Usage:
//
//	lockcheck -action lock
//	lockcheck -action logout
//	lockcheck -action shutdown
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/emosenkis/family-policy/internal/platform"
)

func main() {
	action := flag.String("action", "lock", "Lock action to exercise: lock, logout, or shutdown")
	flag.Parse()

	locker := platform.NewLocker()

	var a platform.LockAction
	switch *action {
	case "lock":
		a = platform.ActionLock
	case "logout":
		a = platform.ActionLogout
	case "shutdown":
		a = platform.ActionShutdown
	default:
		fmt.Fprintf(os.Stderr, "unknown action %q (want lock, logout, or shutdown)\n", *action)
		os.Exit(1)
	}

	if !locker.Supports(a) {
		fmt.Fprintf(os.Stderr, "this platform's locker does not support %q\n", *action)
		os.Exit(1)
	}

	fmt.Printf("Exercising %q via the platform lock adaptor...\n", *action)
	if err := locker.Lock(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Done.")
}
