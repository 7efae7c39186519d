package service

import "clipboard-history/pkg/types"

// NotificationHandler is implemented by components that need to hear about
// history changes and show requests. HandleNotification must not block.
type NotificationHandler interface {
	HandleNotification(signal types.Signal)
}

// NotificationFunc adapts a function to NotificationHandler.
type NotificationFunc func(signal types.Signal)

func (f NotificationFunc) HandleNotification(signal types.Signal) { f(signal) }
