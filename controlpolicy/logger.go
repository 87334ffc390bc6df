package controlpolicy

import "github.com/sirupsen/logrus"

// log 控制策略模块的日志记录器
var log = logrus.WithField("module", "controlpolicy")
