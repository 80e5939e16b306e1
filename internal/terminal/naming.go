// Terminal naming helpers, matching the scheme in spec.md §6 and
// grounded on terminal.rs's get_*_terminal_name functions.
package terminal

import "fmt"

const (
	BufferLimit  = 100
	Cols         = 105
	Rows         = 10
	ProgressRows = 8
	CombinedCols = 58
	CombinedRows = 20
)

func ComposeTerminalName(endpoint, stack string) string {
	return fmt.Sprintf("compose-%s-%s", endpoint, stack)
}

func CombinedTerminalName(endpoint, stack string) string {
	return fmt.Sprintf("combined-%s-%s", endpoint, stack)
}

func ContainerExecTerminalName(endpoint, stack, container string, index int) string {
	return fmt.Sprintf("container-exec-%s-%s-%s-%d", endpoint, stack, container, index)
}

func ContainerLogName(endpoint, container string) string {
	return fmt.Sprintf("container-log-%s-%s", endpoint, container)
}
