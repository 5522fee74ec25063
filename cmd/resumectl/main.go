// Package main 是 resumectl 命令行工具，直接在配置的存储上管理简历文档。
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "resumectl",
	Short:         "Manage resume documents",
	Long:          "resumectl lists, creates, duplicates, deletes and exports resume documents in the configured store.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var sqlitePath string

func init() {
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "db", "", "SQLite file to use instead of the configured database")
}

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig 读取环境配置；--db 覆盖数据库为本地 SQLite 文件。
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if sqlitePath != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.SQLitePath = sqlitePath
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	return store.New(db), nil
}
