package master

import "github.com/sirupsen/logrus"

// log 主控模块的日志记录器
var log = logrus.WithField("module", "master")
