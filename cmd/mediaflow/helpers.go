package main

import (
	"mediaflow/internal/config"
	"mediaflow/internal/notifications"
)

func newNotifier(cfg *config.Config) notifications.Service {
	return notifications.NewService(cfg)
}
