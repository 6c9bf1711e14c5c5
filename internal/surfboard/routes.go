package surfboard

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/agentstation/surfpub/pkg/errors"
)

// valuesSuffix marks per-namespace values files.
const valuesSuffix = "-values.yaml"

// Rule is a gateway ingress rule.
type Rule struct {
	Target      string
	Path        string
	ServiceName string
	ServicePort string
}

// Namespace lists the services routed through a namespace's gateway.
type Namespace struct {
	Name     string
	Env      string
	Services []string
}

// readRoutes reads a values file. It returns nil when the file configures no
// gateway host.
func readRoutes(fs afero.Fs, path string) (*Namespace, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	if v.GetString("status-api-gateway.ingress.host") == "" {
		return nil, nil
	}

	name := strings.TrimSuffix(filepath.Base(path), valuesSuffix)
	ns := &Namespace{Name: name, Env: namespaceEnv(name)}

	var rules []Rule
	if err := v.UnmarshalKey("status-api-gateway.ingress.rules", &rules); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	for _, r := range rules {
		ns.Services = append(ns.Services, strings.ReplaceAll(r.ServiceName, "-", " "))
	}
	return ns, nil
}

// namespaceEnv returns the environment part of a namespace name such as
// "eue-status-api-alpha". Names with fewer parts are their own environment.
func namespaceEnv(name string) string {
	parts := strings.Split(name, "-")
	if len(parts) > 3 {
		return parts[3]
	}
	return name
}
