package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

const (
	EnvAppModule = "APP_MODULE"
	EnvHost      = "HOST"
	EnvPort      = "PORT"

	DefaultAppModule = "main:app"
	DefaultHost      = "0.0.0.0"
	DefaultPort      = "8000"
)

// LookupFunc is the function signature for environment lookups, matching os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ExecFunc is the function signature for process replacement, matching syscall.Exec
type ExecFunc func(argv0 string, argv []string, envv []string) error

// Options holds the resolved uvicorn launch parameters
type Options struct {
	AppModule string
	Host      string
	Port      string
}

// Defaults returns the literal fallback options used when nothing else is set.
func Defaults() Options {
	return Options{
		AppModule: DefaultAppModule,
		Host:      DefaultHost,
		Port:      DefaultPort,
	}
}

// Resolve fills Options from the environment with ${VAR:-default} semantics:
// a variable that is unset or set to the empty string falls back to the
// corresponding value in defaults. Set-but-empty deliberately behaves the
// same as unset.
func Resolve(lookup LookupFunc, defaults Options) Options {
	return Options{
		AppModule: envOrDefault(lookup, EnvAppModule, defaults.AppModule),
		Host:      envOrDefault(lookup, EnvHost, defaults.Host),
		Port:      envOrDefault(lookup, EnvPort, defaults.Port),
	}
}

func envOrDefault(lookup LookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

// Launcher replaces the current process with a uvicorn server process.
type Launcher struct {
	lookPath func(file string) (string, error)
	execFn   ExecFunc // injectable exec function for testing
}

func New() *Launcher {
	return &Launcher{
		lookPath: exec.LookPath,
		execFn:   syscall.Exec,
	}
}

// Command returns the argv for the resolved options. The reload flag is
// always present.
func Command(opts Options) []string {
	return []string{
		"uvicorn",
		"--reload",
		"--host", opts.Host,
		"--port", opts.Port,
		opts.AppModule,
	}
}

// Launch execs uvicorn with the given options. On success it does not
// return: the calling process image is replaced by the server process and
// signals delivered to this PID reach the server. Any returned error means
// the replacement never happened.
func (l *Launcher) Launch(opts Options) error {
	argv := Command(opts)
	bin, err := l.lookPath(argv[0])
	if err != nil {
		return fmt.Errorf("failed to locate %s: %w", argv[0], err)
	}
	argv[0] = bin
	if err := l.execFn(bin, argv, os.Environ()); err != nil {
		return fmt.Errorf("failed to exec %s: %w", bin, err)
	}
	return nil
}
