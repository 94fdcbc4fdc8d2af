package parts

import (
	"bufio"
	"context"
	"os"

	"github.com/streamkit/streamkit/stream"
)

// ReadLines returns a producer that emits each line of the file at path.
// The file is opened in CreateEnv and closed in ReleaseEnv, so every run
// reads the file from the start with its own descriptor.
func ReadLines(path string) stream.Producer {
	return &lineSource{path: path}
}

type lineSource struct {
	path string
}

type readEnv struct {
	file *os.File
}

func (s *lineSource) TypeOut() stream.Type { return stream.TypeOf[string]() }

func (s *lineSource) CreateEnv(_ context.Context) (stream.Env, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	return &readEnv{file: f}, nil
}

func (s *lineSource) ReleaseEnv(_ context.Context, env stream.Env) error {
	re, ok := env.(*readEnv)
	if !ok || re == nil {
		return nil
	}
	return re.file.Close()
}

func (s *lineSource) Produce(_ context.Context, env stream.Env) stream.Iterator {
	re, _ := env.(*readEnv)
	var sc *bufio.Scanner
	if re != nil {
		sc = bufio.NewScanner(re.file)
	}
	return stream.IteratorFunc(func(_ context.Context) (any, bool, error) {
		if sc == nil {
			return nil, false, nil
		}
		if sc.Scan() {
			return sc.Text(), true, nil
		}
		if err := sc.Err(); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	})
}

// WriteLines returns a consumer that writes each string value as a line to
// the file at path, truncating any previous content. The file is created in
// CreateEnv and flushed and closed in ReleaseEnv. Its result is the number
// of lines written.
func WriteLines(path string) stream.Consumer {
	return &lineSink{path: path}
}

type lineSink struct {
	path string
}

type writeEnv struct {
	file *os.File
	w    *bufio.Writer
}

func (s *lineSink) TypeIn() stream.Type { return stream.TypeOf[string]() }

func (s *lineSink) CreateEnv(_ context.Context) (stream.Env, error) {
	f, err := os.Create(s.path)
	if err != nil {
		return nil, err
	}
	return &writeEnv{file: f, w: bufio.NewWriter(f)}, nil
}

func (s *lineSink) ReleaseEnv(_ context.Context, env stream.Env) error {
	we, ok := env.(*writeEnv)
	if !ok || we == nil {
		return nil
	}
	ferr := we.w.Flush()
	cerr := we.file.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

func (s *lineSink) Consume(ctx context.Context, env stream.Env, src stream.Iterator) (any, error) {
	we, _ := env.(*writeEnv)
	count := 0
	for {
		v, ok, err := src.Next(ctx)
		if err != nil {
			return count, err
		}
		if !ok {
			return count, nil
		}
		line, err := as[string](v)
		if err != nil {
			return count, err
		}
		if we != nil {
			if _, err := we.w.WriteString(line + "\n"); err != nil {
				return count, err
			}
		}
		count++
	}
}
