/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"pagedesigner/internal/backend"
	"pagedesigner/internal/config"
	"pagedesigner/internal/crash"
	"pagedesigner/internal/export"
	applog "pagedesigner/internal/log"
	"pagedesigner/internal/ui"
	"pagedesigner/internal/version"
)

func usage() {
	fmt.Println("Page Designer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pagedesigner version|-v|--version   Show version")
	fmt.Println("  pagedesigner ui                     Launch the designer (build with -tags fyne for full UI)")
	fmt.Println("  pagedesigner serve                  Run the storage backend (DATABASE_URL, PGD_AUTH_SECRET)")
	fmt.Println("  pagedesigner export [out.pdf]       Write a layout proof sheet of the current book")
	fmt.Println("  pagedesigner token set <token>      Store the backend token in the OS keyring")
	fmt.Println("  pagedesigner token clear            Remove the stored backend token")
}

func main() {
	_ = godotenv.Load()
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer func() { crash.Recover(crash.Report{}) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println(version.String())
			return
		case "ui":
			cfg, token, err := config.Load()
			if err != nil {
				l.Error("config load failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			journalDir := ""
			if path, err := config.ConfigPath(); err == nil {
				journalDir = filepath.Join(filepath.Dir(path), "journal")
			}
			if err := ui.Run(ui.RunOptions{Config: cfg, Token: token, Admin: token != "", JournalDir: journalDir}); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "serve":
			if err := backend.Start(); err != nil {
				l.Error("server failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "export":
			out := "layout-proof.pdf"
			if len(args) >= 3 {
				out = args[2]
			}
			if err := exportProof(out); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote", out)
			return
		case "token":
			if len(args) < 3 {
				usage()
				os.Exit(2)
			}
			switch args[2] {
			case "set":
				if len(args) < 4 {
					fmt.Println("token set requires <token>")
					os.Exit(2)
				}
				cfg, _, err := config.Load()
				if err == nil {
					err = config.Save(cfg, args[3])
				}
				if err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Println("Token stored.")
			case "clear":
				if err := config.ForgetToken(); err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Println("Token removed.")
			default:
				usage()
				os.Exit(2)
			}
			return
		}
	}

	usage()
}

func exportProof(out string) error {
	cfg, token, err := config.Load()
	if err != nil {
		return err
	}
	timeout := time.Duration(cfg.Backend.TimeoutMs) * time.Millisecond
	client := backend.NewClient(cfg.Backend.BaseURL, token, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	elements, err := client.ListElements(ctx, backend.ScopeActive)
	if err != nil {
		return fmt.Errorf("fetch elements: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	opts := export.ProofOptions{
		PageWidth:  float64(cfg.Editor.PageWidthPx),
		PageHeight: float64(cfg.Editor.PageHeightPx),
		Title:      "Layout proof",
	}
	if err := export.WriteProof(f, elements, opts); err != nil {
		return err
	}
	return f.Sync()
}
