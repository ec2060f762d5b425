package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Alia5/catinput/device/keyboard"
)

// Keys prints the support table or the outcome of normalizing one key.
type Keys struct {
	KeysDir   string `help:"Directory of key icons (*.png) defining the supported keys (default: built-in set)" env:"CATINPUT_KEYS_DIR"`
	Normalize string `help:"Raw key name to run through the normalizer"`
	Mode      string `help:"UI mode used for normalization" enum:"standard,keyboard" default:"standard"`

	Out io.Writer `kong:"-"`
}

func (k *Keys) Run() error {
	out := k.Out
	if out == nil {
		out = os.Stdout
	}
	support, err := loadSupport(k.KeysDir)
	if err != nil {
		return err
	}

	if k.Normalize == "" {
		for _, key := range support.Keys() {
			fmt.Fprintln(out, key)
		}
		return nil
	}

	mode := keyboard.Mode(k.Mode)
	canonical := keyboard.Canonicalize(k.Normalize)
	key, ok := keyboard.NewNormalizer(support).Normalize(k.Normalize, mode)
	switch {
	case ok:
		fmt.Fprintf(out, "%s -> %s\n", k.Normalize, key)
	case keyboard.IsArrow(canonical) && mode != keyboard.ModeKeyboard:
		fmt.Fprintf(out, "%s -> dropped (arrow keys are only tracked in keyboard mode)\n", k.Normalize)
	default:
		fmt.Fprintf(out, "%s -> dropped (%s is not supported)\n", k.Normalize, canonical)
	}
	return nil
}

// loadSupport reads the support table from dir, or returns the built-in one
// when dir is empty.
func loadSupport(dir string) (*keyboard.SupportTable, error) {
	if dir == "" {
		return keyboard.DefaultSupportTable(), nil
	}
	if st, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("keys dir: %w", err)
	} else if !st.IsDir() {
		return nil, fmt.Errorf("keys dir %s is not a directory", dir)
	}
	support, err := keyboard.LoadSupportTable(os.DirFS(dir), "*.png")
	if err != nil {
		return nil, err
	}
	if support.Len() == 0 {
		return nil, fmt.Errorf("keys dir %s contains no *.png key icons", dir)
	}
	return support, nil
}
