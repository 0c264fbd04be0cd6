package pkg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

var ErrInputNotFound = errors.New("input file not exist")

// zstd 帧的魔数
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// CheckFileExist 检查文件是否存在
func CheckFileExist(filePath string) (bool, error) {
	_, err := os.Lstat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// isStdio reports whether path names stdin or stdout.
func isStdio(path string) bool { return path == "" || path == "-" }

// ReadInput 读取输入，路径为空或 "-" 时读取 stdin，zstd 压缩的内容会自动解压
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if isStdio(path) {
		data, err = io.ReadAll(stdin)
	} else {
		exist, cerr := CheckFileExist(path)
		if cerr != nil {
			return nil, fmt.Errorf("check file exist: %w", cerr)
		}
		if !exist {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if IsCompressed(data) {
		return Decompress(data)
	}
	return data, nil
}

// WriteOutput 写出结果，路径为空或 "-" 时写到 stdout
func WriteOutput(path string, stdout io.Writer, data []byte, compress bool) error {
	if compress {
		var err error
		if data, err = Compress(data); err != nil {
			return err
		}
	}
	if isStdio(path) {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// IsCompressed reports whether data starts with a zstd frame.
func IsCompressed(data []byte) bool { return bytes.HasPrefix(data, zstdMagic) }

func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}
