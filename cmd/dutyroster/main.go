// dutyroster 命令行排班工具
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/paiban/dutyroster/pkg/logger"
)

var (
	logLevel    string
	weightsFile string
	noColor     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dutyroster",
		Short: "月度值班排班工具",
		Long:  `根据员工、岗位、休假与偏好申请以及上月末班次生成月度值班表，无解时给出诊断。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logger.Config{Level: logLevel, Format: "console", Output: "stderr"})
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "日志级别 (debug/info/warn/error)")
	rootCmd.PersistentFlags().StringVarP(&weightsFile, "weights", "w", "", "权重与优先级配置文件 (YAML)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "关闭彩色输出")

	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(diagnoseCmd())
	rootCmd.AddCommand(profilesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
