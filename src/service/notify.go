package service

import "course-client/logger"

// Notifier is the external "present a message, await acknowledgment"
// collaborator. Dialog and snackbar implementations live outside this core;
// every terminal outcome of a mutating flow goes through exactly one Notify.
type Notifier interface {
	Notify(title, message string)
}

// LogNotifier writes notices to the application log. It is the default
// collaborator for headless runs and tests.
type LogNotifier struct{}

func (LogNotifier) Notify(title, message string) {
	logger.L().WithField("title", title).Info(message)
}

// NoticeRecorder captures notices for assertions in tests.
type NoticeRecorder struct {
	Notices []string
}

func (n *NoticeRecorder) Notify(title, message string) {
	n.Notices = append(n.Notices, title+": "+message)
}
