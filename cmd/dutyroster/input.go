package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/paiban/dutyroster/internal/config"
	"github.com/paiban/dutyroster/pkg/engine"
)

// loadRequest 读取 YAML 格式的排班请求
func loadRequest(path string) (*engine.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取输入文件失败: %w", err)
	}
	return parseRequest(data)
}

func parseRequest(data []byte) (*engine.Request, error) {
	var req engine.Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("解析输入文件失败: %w", err)
	}
	return &req, nil
}

// newEngine 按命令行参数创建引擎
func newEngine() (*engine.Engine, error) {
	opts := engine.DefaultOptions()
	if weightsFile != "" {
		wf, err := config.LoadWeights(weightsFile)
		if err != nil {
			return nil, err
		}
		opts.Weights = wf.Weights
		opts.Priorities = opts.Priorities.Merge(wf.PriorityTable)
	}
	return engine.New(opts)
}
