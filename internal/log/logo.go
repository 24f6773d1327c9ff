package log

import (
	"fmt"

	"github.com/mbndr/figlet4go"
)

func PrintLogo(text string, hexColors []string) {
	ascii := figlet4go.NewAsciiRender()
	options := figlet4go.NewRenderOptions()

	for _, hex := range hexColors {
		clr, err := figlet4go.NewTrueColorFromHexString(hex)
		if err != nil {
			continue
		}
		options.FontColor = append(options.FontColor, clr)
	}

	logo, err := ascii.RenderOpts(text, options)
	if err != nil {
		fmt.Println(text)
		return
	}

	fmt.Print(logo)
}
