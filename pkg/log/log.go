// Package log wires up the structured logger every other package logs
// through: a logrus logger tagged with the emitting component's name.
package log

import "github.com/sirupsen/logrus"

// New returns a logger entry pre-tagged with component, e.g. "datatree"
// or "persistence".
func New(component string) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	return logger.WithField("component", component)
}
