package tracker

import (
	"sort"

	"github.com/shirou/gopsutil/v3/host"
)

// currentOSUser returns the username of the most recently started login
// session on this workstation. The tracker daemon itself typically runs as
// a privileged service account, so os/user.Current() would report that
// account rather than whoever is sitting at the console; gopsutil's
// host.Users() reads the same session table `who` does.
func currentOSUser() (string, error) {
	users, err := host.Users()
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", nil
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Started > users[j].Started })
	return users[0].User, nil
}
