// Package log provides the minimal key value logger shared by the client
// packages. Libraries log through the Logger interface and never print
// directly, callers swap in their own implementation where needed.
package log

import (
	"fmt"
	"log"
	"strings"
)

// Root is the default logger used when no other logger is configured.
var Root Logger = &Default{}

// Logger is the logger interface. The variadic arguments are key value pairs.
// The key must be a string and the value should have a meaningful string
// representation.
type Logger interface {
	Debug(string, ...interface{})
	Error(string, ...interface{})
	Crit(string, ...interface{})
	With(...interface{}) Logger
}

// Default logs to the stdlib logger with a level prefix and appended tags.
type Default struct {
	Tags []interface{}
}

func (l *Default) Debug(m string, s ...interface{}) { log.Print(tfmt("DEB ", m, s, l.Tags)) }
func (l *Default) Error(m string, s ...interface{}) { log.Print(tfmt("ERR ", m, s, l.Tags)) }
func (l *Default) Crit(m string, s ...interface{})  { log.Print(tfmt("CRI ", m, s, l.Tags)) }

func (l *Default) With(tags ...interface{}) Logger { return l.with(tags) }

func (l *Default) with(tags []interface{}) *Default {
	t := make([]interface{}, 0, len(tags)+len(l.Tags))
	t = append(t, tags...)
	t = append(t, l.Tags...)
	return &Default{Tags: t}
}

func tfmt(lvl, msg string, all ...[]interface{}) string {
	var b strings.Builder
	b.WriteString(lvl)
	b.WriteString(msg)
	for _, tags := range all {
		for i, v := range tags {
			if i%2 == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('=')
			}
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}
