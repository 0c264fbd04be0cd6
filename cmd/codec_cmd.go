package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robbyt/roml/parse"
	"github.com/robbyt/roml/parse/roml"
	"github.com/robbyt/roml/pkg"
)

type CodecParams struct {
	Input    string `json:"input"`    // 输入文件路径，默认 stdin
	Output   string `json:"output"`   // 输出文件地址，默认 stdout
	Format   string `json:"format"`   // 交换格式 json / yaml / toml / msgpack
	Compress bool   `json:"compress"` // 使用 zstd 压缩输出
}

func (p *CodecParams) bind(cmd *cobra.Command, withFormat bool) {
	cmd.Flags().StringVarP(&p.Input, "input", "i", "", "input file path, - for stdin")
	if withFormat {
		cmd.Flags().StringVarP(&p.Output, "output", "o", "", "output path, - for stdout")
		cmd.Flags().StringVarP(&p.Format, "format", "f", "", "interchange format: "+formatNames())
		cmd.Flags().BoolVar(&p.Compress, "compress", false, "zstd compress the output")
	}
}

// resolveFormat 优先使用 --format，其次根据文件扩展名判断，默认 json
func (p *CodecParams) resolveFormat(path string) (parse.Format, error) {
	if p.Format != "" {
		return parse.LookupFormat(p.Format)
	}
	if f, ok := parse.DetectFormat(strings.TrimSuffix(path, ".zst")); ok {
		return f, nil
	}
	return parse.JSON, nil
}

func formatNames() string {
	var names []string
	for _, f := range parse.Formats() {
		names = append(names, f.Name)
	}
	return strings.Join(names, ", ")
}

func newEncodeCmd(global *GlobalParams) *cobra.Command {
	params := &CodecParams{}
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "convert interchange data to ROML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd.ErrOrStderr(), global)
			format, err := params.resolveFormat(params.Input)
			if err != nil {
				return err
			}
			data, err := pkg.ReadInput(params.Input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			v, err := format.Decode(data)
			if err != nil {
				return err
			}
			text := roml.New(roml.WithLogger(log)).Encode(v)
			log.Debug("encoded", "format", format.Name, "input", params.Input, "bytes", len(text))
			return pkg.WriteOutput(params.Output, cmd.OutOrStdout(), []byte(text), params.Compress)
		},
	}
	params.bind(cmd, true)
	return cmd
}

func newDecodeCmd(global *GlobalParams) *cobra.Command {
	params := &CodecParams{}
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "convert ROML to interchange data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd.ErrOrStderr(), global)
			format, err := params.resolveFormat(params.Output)
			if err != nil {
				return err
			}
			data, err := pkg.ReadInput(params.Input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			res := roml.New(roml.WithLogger(log)).Decode(string(data))
			if !res.OK() {
				log.Warn("document has issues", "count", len(res.Errors))
			}
			out, err := format.Encode(res.Value)
			if err != nil {
				return err
			}
			return pkg.WriteOutput(params.Output, cmd.OutOrStdout(), out, params.Compress)
		},
	}
	params.bind(cmd, true)
	return cmd
}

func newCheckCmd(global *GlobalParams) *cobra.Command {
	params := &CodecParams{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "validate a ROML document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd.ErrOrStderr(), global)
			data, err := pkg.ReadInput(params.Input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			res := roml.New(roml.WithLogger(log)).Decode(string(data))
			for _, msg := range res.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			if !res.OK() {
				return fmt.Errorf("%w: %d issue(s)", roml.ErrInvalidDocument, len(res.Errors))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d prime value(s)\n", len(res.Primes.Primes))
			return nil
		},
	}
	params.bind(cmd, false)
	return cmd
}
