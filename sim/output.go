package sim

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

// WriteCSV 将试验结果写入CSV文件
// 功能：每次试验输出一行，便于离线统计分析
// 参数：path-输出文件路径，results-试验结果列表
func WriteCSV(path string, results []TrialResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"seed", "policy", "vehicles", "avg_wait", "cycles", "throughput"}); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			fmt.Sprintf("%d", r.Seed),
			r.Policy,
			fmt.Sprintf("%d", r.Vehicles),
			fmt.Sprintf("%.2f", r.AvgWait),
			fmt.Sprintf("%d", r.Cycles),
			fmt.Sprintf("%.1f", r.Throughput),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// WriteMongo 将试验结果写入MongoDB
// 功能：把全部试验结果插入配置指定的集合
// 参数：cfg-MongoDB输出配置，results-试验结果列表
// 说明：URI为空时直接跳过；写入失败只影响结果留存，不影响试验本身
func WriteMongo(cfg config.Mongo, results []TrialResult) error {
	if cfg.URI == "" || len(results) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return fmt.Errorf("output: connect mongo: %w", err)
	}
	defer client.Disconnect(ctx)

	coll := client.Database(cfg.DB).Collection(cfg.Col)
	docs := lo.Map(results, func(r TrialResult, _ int) any { return r })
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("output: insert results: %w", err)
	}
	log.Infof("wrote %d trial results to %s.%s", len(results), cfg.DB, cfg.Col)
	return nil
}
