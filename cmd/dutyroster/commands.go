package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/paiban/dutyroster/pkg/engine"
	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/scheduler/profile"
)

func applyColor() {
	if noColor {
		color.NoColor = true
	}
}

func solveCmd() *cobra.Command {
	var (
		input   string
		asJSON  bool
		timeout int
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "求解月度值班表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyColor()
			req, err := loadRequest(input)
			if err != nil {
				return err
			}
			eng, err := newEngine()
			if err != nil {
				return err
			}
			if timeout > 0 {
				opts := eng.Options()
				opts.Timeout = time.Duration(timeout) * time.Second
				if eng, err = engine.New(opts); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			resp, runErr := eng.Run(ctx, req)
			out := cmd.OutOrStdout()
			if asJSON && resp != nil {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(resp); err != nil {
					return err
				}
				return runErr
			}

			if runErr != nil {
				if resp != nil && resp.Diagnosis != nil {
					renderNotes(out, resp.Notes)
					renderDiagnosis(out, resp.Diagnosis)
				}
				return describeError(runErr)
			}
			renderResult(out, resp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "file", "f", "", "排班请求文件 (YAML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以JSON输出完整结果")
	cmd.Flags().IntVar(&timeout, "level-timeout", 0, "每个放宽级别的求解时限（秒），0 表示默认值")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func diagnoseCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "不求解，只检查请求中可能导致无解的原因",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyColor()
			req, err := loadRequest(input)
			if err != nil {
				return err
			}
			eng, err := newEngine()
			if err != nil {
				return err
			}
			diag, notes, err := eng.Diagnose(req)
			if err != nil {
				return describeError(err)
			}
			out := cmd.OutOrStdout()
			renderNotes(out, notes)
			renderDiagnosis(out, diag)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "file", "f", "", "排班请求文件 (YAML)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func profilesCmd() *cobra.Command {
	var custom bool
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "列出各放宽级别的约束强度",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyColor()
			eng, err := newEngine()
			if err != nil {
				return err
			}
			renderProfiles(cmd.OutOrStdout(), profile.Ladder(eng.Options().Weights, custom))
			return nil
		},
	}
	cmd.Flags().BoolVar(&custom, "custom", false, "包含个人规则放宽级别")
	return cmd
}

// describeError 把校验错误展开为逐字段说明
func describeError(err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || len(appErr.Fields) == 0 || appErr.Code != apperrors.CodeValidationFail {
		return err
	}
	fields := make([]string, 0, len(appErr.Fields))
	for field := range appErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	msg := appErr.Message
	for _, field := range fields {
		msg += fmt.Sprintf("\n  %s: %v", field, appErr.Fields[field])
	}
	return errors.New(msg)
}
