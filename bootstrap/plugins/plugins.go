package plugins

import (
	"fmt"

	"github.com/trackvault/trackvault/bootstrap"
)

// Plugin is the lifecycle every infrastructure dependency implements.
type Plugin interface {
	// Flag reports whether the plugin is enabled by config
	Flag() bool
	// Name plugin name
	Name() string
	// New allocates the underlying resource
	New() interface{}
	// Health verifies the resource is reachable
	Health()
	// Close releases the resource
	Close()
}

// Plugins registered plugin set
var Plugins = make(map[string]Plugin)

// RegisteredPlugin registers a plugin, called from package init funcs.
func RegisteredPlugin(plugin Plugin) {
	Plugins[plugin.Name()] = plugin
}

func NewPlugins() {
	for _, p := range Plugins {
		if !p.Flag() {
			continue
		}
		bootstrap.NewLogger().Logger.Info(fmt.Sprintf("%s Init ... ", p.Name()))
		p.New()
		bootstrap.NewLogger().Logger.Info(fmt.Sprintf("%s HealthCheck ... ", p.Name()))
		p.Health()
		bootstrap.NewLogger().Logger.Info(fmt.Sprintf("%s Success Init. ", p.Name()))
	}
}

func ClosePlugins() {
	for _, p := range Plugins {
		if !p.Flag() {
			continue
		}
		p.Close()
		bootstrap.NewLogger().Logger.Info(fmt.Sprintf("%s Success Close ... ", p.Name()))
	}
}
