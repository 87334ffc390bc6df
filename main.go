package main

import (
	"encoding/base64"
	"flag"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/task"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 控制策略覆盖项，非空时覆盖配置文件中的control.policy
	policyOverride = flag.String("policy", "", "control policy override (fixed binary queue)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "main")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Fatalf("unknown log level %s", *logLevel)
	}

	// 配置加载：文件路径与Base64数据二选一
	var configBytes []byte
	switch {
	case *configPath != "":
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("read config file error: %v", err)
		}
		configBytes = data
	case *configData != "":
		data, err := base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Fatalf("decode config data error: %v", err)
		}
		configBytes = data
	default:
		log.Fatalf("either -config or -config-data is required")
	}

	var c config.Config
	if err := yaml.Unmarshal(configBytes, &c); err != nil {
		log.Fatalf("parse config error: %v", err)
	}
	if *policyOverride != "" {
		c.Control.Policy = *policyOverride
	}

	results, err := task.RunTrials(c)
	if err != nil {
		log.Fatalf("run trials error: %v", err)
	}
	for _, r := range results {
		log.Infof("%s", r)
	}
	log.Infof("engine complete")
}
