// SPDX-License-Identifier: EPL-2.0

package audmix_test

import (
	"fmt"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/audiotest"
	"github.com/ik5/audmix/mixer"
)

// ExampleRender mixes two overlapping chunks offline and captures the
// result as a WAV stream.
func ExampleRender() {
	e := mixer.New(mixer.WithHeadless())
	if err := e.OpenAudio(22050, audio.S16SYS, 2, 1024); err != nil {
		fmt.Println("open:", err)
		return
	}
	defer e.CloseAudio()

	blip, err := e.QuickLoadRAW(make([]byte, 4*1024*3))
	if err != nil {
		fmt.Println("load:", err)
		return
	}
	if _, err := e.PlayChannel(-1, blip, 0); err != nil {
		fmt.Println("play:", err)
		return
	}
	if _, err := e.FadeInChannel(-1, blip, 1, 100); err != nil {
		fmt.Println("play:", err)
		return
	}

	var out audiotest.SeekBuffer
	d, err := audmix.Render(e, &out, 0)
	if err != nil {
		fmt.Println("render:", err)
		return
	}

	fmt.Printf("rendered %d ms into %d bytes\n", d.Milliseconds(), len(out.Bytes()))
	// Output: rendered 278 ms into 24620 bytes
}

// ExampleOpenAudio shows the reference counting of the process-wide
// engine.
func ExampleOpenAudio() {
	prev := audmix.SetDefault(mixer.New(mixer.WithHeadless()))
	defer audmix.SetDefault(prev)

	_ = audmix.OpenAudio(0, 0, 0, 0)
	_ = audmix.OpenAudio(0, audio.S16SYS, 2, 0)

	n, spec := audmix.QuerySpec()
	fmt.Println(n, spec)

	audmix.CloseAudio()
	audmix.CloseAudio()

	n, _ = audmix.QuerySpec()
	fmt.Println(n)
	// Output:
	// 2 22050Hz S16LSB 2ch 1024 samples
	// 0
}
