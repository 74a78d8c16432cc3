package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Painter styles directory and file names in rendered trees.
type Painter interface {
	Directory(name string) string
	File(name string) string
}

// plainPainter leaves names unstyled. Used for files and the clipboard.
type plainPainter struct{}

func (plainPainter) Directory(name string) string { return name }

func (plainPainter) File(name string) string { return name }

// colorPainter mirrors the original console styling: bold cyan directories
// and green files.
type colorPainter struct {
	directoryColor *color.Color
	fileColor      *color.Color
}

func (painter colorPainter) Directory(name string) string {
	return painter.directoryColor.Sprint(name)
}

func (painter colorPainter) File(name string) string {
	return painter.fileColor.Sprint(name)
}

// NewConsolePainter returns a colorizing painter when the writer is a
// terminal and color output is not globally disabled, and a plain painter
// otherwise.
func NewConsolePainter(writer io.Writer) Painter {
	if !writerIsTerminal(writer) || color.NoColor {
		return plainPainter{}
	}
	return colorPainter{
		directoryColor: color.New(color.FgCyan, color.Bold),
		fileColor:      color.New(color.FgGreen),
	}
}

func writerIsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	descriptor := file.Fd()
	return isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor)
}
