package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/robbyt/roml/parse"
	"github.com/robbyt/roml/parse/roml"
)

const (
	historyFile = ".roml_history"
	promptMain  = "roml> "
	promptCont  = "....> "
)

// session 交互模式的状态：encode 模式下每行是一个 JSON 值，decode 模式下累积 ROML 行直到空行
type session struct {
	codec  *roml.Codec
	out    io.Writer
	decode bool
	buf    strings.Builder
}

func newSession(codec *roml.Codec, out io.Writer) *session {
	return &session{codec: codec, out: out}
}

func (s *session) prompt() string {
	if s.buf.Len() > 0 {
		return promptCont
	}
	return promptMain
}

// handle processes one input line. It returns true when the session should end.
func (s *session) handle(line string) (exit bool) {
	trimmed := strings.TrimSpace(line)
	if s.buf.Len() == 0 && strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}

	if s.decode {
		if trimmed != "" {
			s.buf.WriteString(line)
			s.buf.WriteByte('\n')
			return false
		}
		if s.buf.Len() == 0 {
			return false
		}
		res := s.codec.Decode(s.buf.String())
		s.buf.Reset()
		for _, msg := range res.Errors {
			fmt.Fprintln(s.out, "! "+msg)
		}
		data, err := parse.JSON.Encode(res.Value)
		if err != nil {
			fmt.Fprintln(s.out, err)
			return false
		}
		fmt.Fprint(s.out, string(data))
		return false
	}

	if trimmed == "" {
		return false
	}
	v, err := parse.JSON.Decode([]byte(trimmed))
	if err != nil {
		fmt.Fprintln(s.out, err)
		return false
	}
	fmt.Fprint(s.out, s.codec.Encode(v))
	return false
}

func (s *session) command(line string) (exit bool) {
	switch strings.ToLower(line) {
	case ":quit", ":q":
		return true
	case ":encode":
		s.decode = false
		fmt.Fprintln(s.out, "encode mode: enter one JSON value per line")
	case ":decode":
		s.decode = true
		fmt.Fprintln(s.out, "decode mode: enter a ROML document, finish with an empty line")
	default:
		fmt.Fprintln(s.out, "unknown command. Commands: :encode, :decode, :quit")
	}
	return false
}

// historyPath is false when there is no home directory to keep history in.
func historyPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	return filepath.Join(home, historyFile), true
}

func newReplCmd(global *GlobalParams) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "convert values interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd.ErrOrStderr(), global)
			s := newSession(roml.New(roml.WithLogger(log)), cmd.OutOrStdout())

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			if histPath, ok := historyPath(); ok {
				if f, err := os.Open(histPath); err == nil {
					_, _ = ln.ReadHistory(f)
					_ = f.Close()
				}
				defer func() {
					if f, err := os.Create(histPath); err == nil {
						_, _ = ln.WriteHistory(f)
						_ = f.Close()
					}
				}()
			} else {
				log.Debug("no home directory, history disabled")
			}

			for {
				line, err := ln.Prompt(s.prompt())
				if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
					fmt.Fprintln(cmd.OutOrStdout())
					return nil
				}
				if err != nil {
					return err
				}
				if strings.TrimSpace(line) != "" {
					ln.AppendHistory(line)
				}
				if s.handle(line) {
					return nil
				}
			}
		},
	}
}
