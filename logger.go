package topogen

import (
	"github.com/sirupsen/logrus"
)

// FieldCategory is the structured field naming the part of the package that logged
const FieldCategory = "category"

var (
	Log       *logrus.Logger
	TopoLog   *logrus.Entry
	GenLog    *logrus.Entry
	SubnetLog *logrus.Entry
	ConnLog   *logrus.Entry
	FileLog   *logrus.Entry
)

func init() {
	Log = logrus.New()
	Log.SetLevel(logrus.WarnLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	TopoLog = Log.WithField("pkg", "topogen")
	GenLog = TopoLog.WithField(FieldCategory, "Gen")
	SubnetLog = TopoLog.WithField(FieldCategory, "Subnet")
	ConnLog = TopoLog.WithField(FieldCategory, "Conn")
	FileLog = TopoLog.WithField(FieldCategory, "File")
}

// SetLogLevel parses a logrus level name ("debug", "info", ...) and applies it
// to the package logger
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	return nil
}
