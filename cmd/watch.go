package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/zjrosen/regview/internal/app"
	"github.com/zjrosen/regview/internal/config"
	"github.com/zjrosen/regview/internal/log"
)

// watchConfig forwards edits of the loaded config file to the running
// program. Invalid edits are logged and ignored.
func watchConfig(p *tea.Program) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := reloadConfig()
		if err != nil {
			log.ErrorErr(log.CatConfig, "ignoring config change", err, "path", e.Name)
			return
		}
		p.Send(app.ConfigReloadedMsg{Config: next})
	})
	viper.WatchConfig()
}

func reloadConfig() (config.Config, error) {
	var next config.Config
	if err := viper.Unmarshal(&next); err != nil {
		return config.Config{}, err
	}
	if err := next.Validate(); err != nil {
		return config.Config{}, err
	}
	return next, nil
}
