// Banner is the ANSI-dimmed status-line helper, adapted from
// usermsg.go's UserMessenger: instead of writing to an io.Writer it
// pushes into a terminal's replay buffer, so operators watching a
// multi-step stack action (pull, then up, then prune) see the same
// step markers a reconnecting client replays from the buffer.
package terminal

import "fmt"

// PushBanner writes a dimmed status line into inst's buffer, used
// between phases of a multi-step stack operation (e.g. updateStack's
// pull/up/prune sequence).
func PushBanner(inst *Instance, msg string) {
	inst.PushBuffer(fmt.Sprintf("\x1b[90m%s\x1b[0m\r\n", msg))
}
