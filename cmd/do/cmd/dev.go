package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"
)

func DevCmd() *cobra.Command {
	var port string

	c := &cobra.Command{
		Use:   "dev",
		Short: "Run the server with air hot-reload and in-memory storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port)
		},
	}
	c.Flags().StringVar(&port, "port", "5000", "Port the server listens on")

	return c
}

func runDev(port string) error {
	airPath, err := exec.LookPath("air")
	if err != nil {
		fmt.Println("Missing binary: air")
		fmt.Println("Install with:")
		fmt.Println("  go install github.com/air-verse/air@latest")
		return fmt.Errorf("air not found")
	}

	airArgs := []string{
		"air",
		"-c", "/dev/null",
		"-root", ".",
		"-build.cmd", "go build -o ./tmp/main ./cmd/server",
		"-build.bin", "./tmp/main",
		"-build.delay", "100",
		"-build.exclude_dir", "bin,tmp,data,_examples",
		"-build.exclude_regex", "_test.go$",
		"-build.include_ext", "go,sql",
		"-build.kill_delay", "500ms",
		"-build.send_interrupt", "true",
	}

	env := os.Environ()
	env = append(env, "PORT="+port)
	if os.Getenv("STORAGE_DRIVER") == "" {
		env = append(env, "STORAGE_DRIVER=memory")
	}

	return syscall.Exec(airPath, airArgs, env)
}
