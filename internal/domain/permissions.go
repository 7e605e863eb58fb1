package domain

import (
	"fmt"
	"sort"
	"strings"

	m "runic.dev/pkg/runic/internal/model"
)

// Grant is an execution-scoped capability set compiled from declarative
// permission options. A grant belongs to exactly one execution attempt and is
// never shared across watch-mode restarts.
type Grant struct {
	all   bool
	read  []string
	write []string
	net   []string
	env   []string
	run   []string
}

// BuildGrant compiles permission options into a fresh grant. It is a pure
// function of the options; callers must invoke it once per execution attempt.
func BuildGrant(opts m.PermissionOptions) (*Grant, error) {
	grant := &Grant{all: opts.AllowAll}

	var err error
	if grant.read, err = cleanPaths("allow-read", opts.AllowRead); err != nil {
		return nil, err
	}

	if grant.write, err = cleanPaths("allow-write", opts.AllowWrite); err != nil {
		return nil, err
	}

	if grant.net, err = cleanHosts(opts.AllowNet); err != nil {
		return nil, err
	}

	if grant.env, err = cleanNames("allow-env", opts.AllowEnv); err != nil {
		return nil, err
	}

	if grant.run, err = cleanNames("allow-run", opts.AllowRun); err != nil {
		return nil, err
	}

	return grant, nil
}

func cleanPaths(flag string, paths []string) ([]string, error) {
	cleaned := make([]string, 0, len(paths))

	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("%w: empty path in --%s", ErrConfig, flag)
		}

		cleaned = append(cleaned, path)
	}

	sort.Strings(cleaned)

	return cleaned, nil
}

func cleanHosts(hosts []string) ([]string, error) {
	cleaned := make([]string, 0, len(hosts))

	for _, host := range hosts {
		host = strings.TrimSpace(host)
		if host == "" {
			return nil, fmt.Errorf("%w: empty host in --allow-net", ErrConfig)
		}

		// Hosts are host[:port]; a URL here is a misconfiguration.
		if strings.Contains(host, "://") {
			return nil, fmt.Errorf("%w: --allow-net takes host[:port], not a URL: %q", ErrConfig, host)
		}

		cleaned = append(cleaned, host)
	}

	sort.Strings(cleaned)

	return cleaned, nil
}

func cleanNames(flag string, names []string) ([]string, error) {
	cleaned := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty value in --%s", ErrConfig, flag)
		}

		cleaned = append(cleaned, name)
	}

	sort.Strings(cleaned)

	return cleaned, nil
}

// AllowsAll reports whether every capability is granted.
func (g *Grant) AllowsAll() bool { return g.all }

// Environ encodes the grant as environment variables for the engine process.
// The executed program (and any permission shim it loads) reads these to
// enforce the grant.
func (g *Grant) Environ() []string {
	if g.all {
		return []string{"RUNIC_ALLOW_ALL=1"}
	}

	env := make([]string, 0, 5)
	env = appendGrantVar(env, "RUNIC_ALLOW_READ", g.read)
	env = appendGrantVar(env, "RUNIC_ALLOW_WRITE", g.write)
	env = appendGrantVar(env, "RUNIC_ALLOW_NET", g.net)
	env = appendGrantVar(env, "RUNIC_ALLOW_ENV", g.env)
	env = appendGrantVar(env, "RUNIC_ALLOW_RUN", g.run)

	return env
}

func appendGrantVar(env []string, key string, values []string) []string {
	if len(values) == 0 {
		return env
	}

	return append(env, key+"="+strings.Join(values, ","))
}

// Summary lists the grant as capability/values rows for display.
func (g *Grant) Summary() [][2]string {
	if g.all {
		return [][2]string{{"all", "granted"}}
	}

	rows := make([][2]string, 0, 5)
	rows = appendSummaryRow(rows, "read", g.read)
	rows = appendSummaryRow(rows, "write", g.write)
	rows = appendSummaryRow(rows, "net", g.net)
	rows = appendSummaryRow(rows, "env", g.env)
	rows = appendSummaryRow(rows, "run", g.run)

	if len(rows) == 0 {
		rows = append(rows, [2]string{"none", "prompt on first use"})
	}

	return rows
}

func appendSummaryRow(rows [][2]string, capability string, values []string) [][2]string {
	if len(values) == 0 {
		return rows
	}

	return append(rows, [2]string{capability, strings.Join(values, ", ")})
}
