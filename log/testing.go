package log

// TB is the subset of testing.TB used by the test logger.
type TB interface {
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
	Helper()
}

// Testing routes log output to a test so failures carry the client logs.
type Testing struct {
	TB
	Default
}

func (l *Testing) Debug(m string, s ...interface{}) {
	l.Helper()
	l.Logf("%s", tfmt("DEB ", m, s, l.Tags))
}
func (l *Testing) Error(m string, s ...interface{}) {
	l.Helper()
	l.Errorf("%s", tfmt("ERR ", m, s, l.Tags))
}
func (l *Testing) Crit(m string, s ...interface{}) {
	l.Helper()
	l.Fatalf("%s", tfmt("CRI ", m, s, l.Tags))
}
func (l *Testing) With(tags ...interface{}) Logger {
	return &Testing{l.TB, *l.Default.with(tags)}
}
