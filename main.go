package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/task"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/output"
	"gopkg.in/yaml.v2"
)

var (
	// 模拟任务名，用于日志、输出文档与MQTT主题
	job = flag.String("job", "job0", "the name of the whole simulation task")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 覆盖control.seed，负数表示使用配置文件中的值
	seed = flag.Int64("seed", -1, "random seed (negative means control.seed in config)")
	// 重复实验次数，种子依次为seed, seed+1, ...；0表示单次模拟
	batch = flag.Int("batch", 0, "number of replicate runs with consecutive seeds (0 means single run)")
	// 单次模拟结束后在标准输出打印网格
	render = flag.Bool("render", false, "print the final grid to stdout")
	// 环境变量文件，可覆盖MONGO_URI与MQTT_BROKER
	envFile = flag.String("env", ".env", "dotenv file path")

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

	log = logrus.WithField("module", "gridtraffic")
)

// loadConfig 读取并严格解析YAML配置
func loadConfig() (c config.Config, err error) {
	var file []byte
	if *configPath != "" {
		if file, err = os.ReadFile(*configPath); err != nil {
			return c, fmt.Errorf("config file load err: %w", err)
		}
	} else if *configData != "" {
		if file, err = base64.StdEncoding.DecodeString(*configData); err != nil {
			return c, fmt.Errorf("config data load err: %w", err)
		}
	} else {
		return c, fmt.Errorf("config file or config data must be specified")
	}
	if err = yaml.UnmarshalStrict(file, &c); err != nil {
		return c, fmt.Errorf("config file load err: %w", err)
	}
	return c, nil
}

// applyEnv 环境变量覆盖输出配置
func applyEnv(c *config.Config) {
	if err := godotenv.Load(*envFile); err != nil {
		log.Debugf("no dotenv file loaded: %v", err)
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" && c.Output.Mongo != nil {
		c.Output.Mongo.URI = uri
	}
	if broker := os.Getenv("MQTT_BROKER"); broker != "" && c.Output.MQTT != nil {
		c.Output.MQTT.Broker = broker
	}
}

// openSinks 按配置创建输出目标，连接失败只记录日志，不影响模拟
func openSinks(ctx context.Context, c config.Output, job string) []output.Sink {
	sinks := make([]output.Sink, 0)
	if c.File != "" {
		sinks = append(sinks, output.NewFileSink(c.File, job))
	}
	if c.Mongo != nil {
		if s, err := output.NewMongoSink(ctx, *c.Mongo, job); err != nil {
			log.Errorf("disable mongo output: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	if c.MQTT != nil {
		if s, err := output.NewMQTTSink(*c.MQTT, job); err != nil {
			log.Errorf("disable mqtt output: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	return sinks
}

// seededPath 重复实验的输出文件名：out.pb -> out-<seed>.pb
func seededPath(path string, seed uint64) string {
	if path == "" {
		return ""
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), seed, ext)
}

func runSingle(ctx context.Context, c config.Config) {
	t, err := task.NewContext(*job, c)
	if err != nil {
		log.Fatalf("failed to create task: %v", err)
	}
	sinks := openSinks(ctx, c.Output, *job)
	for _, s := range sinks {
		t.AddObserver(s)
	}
	if err := t.Run(ctx); err != nil {
		log.Errorf("run finished with error: %v", err)
	}
	if err := output.CloseAll(context.WithoutCancel(ctx), sinks); err != nil {
		log.Errorf("close outputs: %v", err)
	}
	if *render {
		fmt.Print(t.Render())
	}
}

// runBatch 重复实验，每个种子使用独立的输出目标，任务名为<job>-<seed>
func runBatch(ctx context.Context, c config.Config) {
	seeds := lo.Times(*batch, func(i int) uint64 { return c.Control.Seed + uint64(i) })
	var mu sync.Mutex
	all := make([]output.Sink, 0)
	factory := func(seed uint64, name string) []task.Observer {
		out := c.Output
		out.File = seededPath(out.File, seed)
		sinks := openSinks(ctx, out, name)
		mu.Lock()
		all = append(all, sinks...)
		mu.Unlock()
		return lo.Map(sinks, func(s output.Sink, _ int) task.Observer { return s })
	}
	results, err := task.RunBatch(ctx, *job, c, seeds, factory)
	if err != nil {
		log.Fatalf("failed to run batch: %v", err)
	}
	for _, r := range results {
		if r.Err != nil {
			log.Errorf("%s: %v", r.Job, r.Err)
			continue
		}
		log.Infof("%s: %+v", r.Job, r.Final)
	}
	if err := output.CloseAll(context.WithoutCancel(ctx), all); err != nil {
		log.Errorf("close outputs: %v", err)
	}
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", lo.Keys(logLevels))
	}

	c, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if *seed >= 0 {
		c.Control.Seed = uint64(*seed)
	}
	applyEnv(&c)
	if err := c.Validate(); err != nil {
		log.Fatal(err)
	}
	log.Infof("%+v", c)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *batch > 0 {
		runBatch(ctx, c)
	} else {
		runSingle(ctx, c)
	}
}
