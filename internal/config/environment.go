package config

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Environment variables carrying the deployment ports.
const (
	AdminPortVar = "ADMIN_PORT"
	CommsPortVar = "COMMS_PORT"
)

// Environment is the part of the deployment taken from the process environment
// rather than the fleet config.
type Environment struct {
	// AdminPort serves the web UI and is part of the public URL.
	AdminPort int
	// CommsPort is the worker communication (pb protocol) port.
	CommsPort int
}

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadEnvironment reads the admin and comms ports through lookup. Both are
// required, must be valid TCP ports, and must differ. Every problem is
// reported as an *EnvironmentError.
func LoadEnvironment(lookup LookupFunc) (Environment, error) {
	var (
		env    Environment
		result *multierror.Error
	)

	admin, err := readPort(lookup, AdminPortVar)
	if err != nil {
		result = multierror.Append(result, err)
	}

	comms, err := readPort(lookup, CommsPortVar)
	if err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return env, err
	}

	if admin == comms {
		return env, &EnvironmentError{
			Variable: CommsPortVar,
			Reason:   "must differ from " + AdminPortVar + " (both are " + strconv.Itoa(admin) + ")",
		}
	}

	env.AdminPort = admin
	env.CommsPort = comms

	return env, nil
}

func readPort(lookup LookupFunc, key string) (int, error) {
	raw, ok := lookup(key)
	if !ok {
		return 0, &EnvironmentError{Variable: key, Reason: "not set"}
	}

	raw = strings.TrimSpace(raw)

	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &EnvironmentError{Variable: key, Reason: "not a number: " + strconv.Quote(raw)}
	}

	if port < 1 || port > 65535 {
		return 0, &EnvironmentError{Variable: key, Reason: "port out of range 1-65535: " + raw}
	}

	return port, nil
}
