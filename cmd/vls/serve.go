package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/sandersn/vetur/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("logfile", "", "append logs to this file")
	serveCmd.Flags().CountP("verbose", "v", "transport log verbosity")
}

func runServe(cmd *cobra.Command, args []string) error {
	logfile, err := cmd.Flags().GetString("logfile")
	if err != nil {
		return fmt.Errorf("failed to get logfile flag: %w", err)
	}
	verbosity, err := cmd.Flags().GetCount("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	if logfile != "" {
		f, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		commonlog.Configure(verbosity, &logfile)
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	} else {
		commonlog.Configure(verbosity, nil)
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Printf("Starting %s %s...", server.Name, Version)
	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.RunStdio(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
