package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	spirobench "github.com/iwtcode/spiroBench"
	"github.com/iwtcode/spiroBench/curvesim"
	"github.com/iwtcode/spiroBench/models"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env not loaded, using environment: %v", err)
	}

	cfg := spirobench.Load()
	log.Printf("Connecting to %s:%d (slave %d) ...", cfg.IP, cfg.Port, cfg.SlaveID)
	client, err := spirobench.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	shell := ishell.New()
	shell.Println("Spirometry bench development shell")
	shell.ShowPrompt(true)

	shell.AddCmd(&ishell.Cmd{
		Name: "status",
		Help: "status",
		Func: func(c *ishell.Context) {
			status, err := client.GetStatus()
			if err != nil {
				c.Err(err)
				return
			}
			printJSON(c, status)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "watch",
		Help: "watch <seconds>",
		Func: func(c *ishell.Context) {
			seconds := 5
			if len(c.Args) >= 1 {
				seconds, _ = strconv.Atoi(c.Args[0])
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(seconds)*time.Second)
			defer cancel()
			for res := range client.StartPolling(ctx, 200*time.Millisecond) {
				if res.Err != nil {
					c.Err(res.Err)
					continue
				}
				s := res.Status
				c.Printf("%s pos=%.1fmm cmd=%.1fmm moving=%v run=%v limits=%v/%v err=%s\n",
					res.Time.Format("15:04:05.000"), s.PositionMM, s.CommandedMM, s.Moving, s.Running,
					s.UpperLimit, s.LowerLimit, s.ErrorText)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "play",
		Help: "play <curve.json>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errors.New("usage: play <curve.json>"))
				return
			}
			data, err := os.ReadFile(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			var curve models.FlowVolumeCurve
			if err := json.Unmarshal(data, &curve); err != nil {
				c.Err(err)
				return
			}
			p, err := client.PlayCurve(curve)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("Playing %d samples, %.2f s (truncated: %v)\n", p.Length, p.Duration, p.Truncated)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "synth",
		Help: "synth <Hombre|Mujer> <age> <height_cm> <weight_kg> [pathology]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 4 {
				c.Err(errors.New("usage: synth <sex> <age> <height_cm> <weight_kg> [pathology]"))
				return
			}
			sex, err := curvesim.ParseSex(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			age, _ := strconv.ParseFloat(c.Args[1], 64)
			height, _ := strconv.ParseFloat(c.Args[2], 64)
			weight, _ := strconv.ParseFloat(c.Args[3], 64)
			pathology := curvesim.PathologyNone
			if len(c.Args) > 4 {
				pathology = strings.Join(c.Args[4:], " ")
			}

			res, err := curvesim.Synthesize(curvesim.Patient{
				Age:       age,
				HeightCm:  height,
				WeightKg:  weight,
				Sex:       sex,
				Pathology: pathology,
			})
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("FVC=%.2f L FEV1=%.2f L PEF=%.2f L/s FEV1/FVC=%.1f%%\n", res.FVC, res.FEV1, res.PEF, res.Ratio)
			p, err := client.PlayCurve(res.Curve)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("Playing %d samples, %.2f s\n", p.Length, p.Duration)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "wave",
		Help: "wave <sinusoid|half_rectified|full_rectified|custom> <amplitude_mm> <speed_%> [equation]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 3 {
				c.Err(errors.New("usage: wave <kind> <amplitude_mm> <speed_%> [equation]"))
				return
			}
			amplitude, err := strconv.ParseFloat(c.Args[1], 64)
			if err != nil {
				c.Err(err)
				return
			}
			speed, err := strconv.ParseFloat(c.Args[2], 64)
			if err != nil {
				c.Err(err)
				return
			}
			spec := models.WaveformSpec{
				Kind:         models.WaveKind(c.Args[0]),
				AmplitudeMM:  amplitude,
				SpeedPercent: speed,
				Equation:     strings.Join(c.Args[3:], " "),
			}
			p, err := client.PlayWaveform(spec)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("Looping %d samples, period %.2f s\n", p.Length, p.Duration)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "stop",
		Help: "stop playback and home the drive",
		Func: func(c *ishell.Context) {
			if err := client.Stop(); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "home",
		Help: "smooth return to home position",
		Func: func(c *ishell.Context) {
			if err := client.ReturnHome(); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "estop",
		Help: "emergency stop",
		Func: func(c *ishell.Context) {
			if err := client.Emergency(); err != nil {
				c.Err(err)
				return
			}
			c.Println("EMERGENCY STOP sent, use rearm to recover")
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "rearm",
		Help: "rearm after emergency stop",
		Func: func(c *ishell.Context) {
			if err := client.Rearm(); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "calibrate",
		Help: "calibrate <on|off>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errors.New("usage: calibrate <on|off>"))
				return
			}
			if err := client.Calibrate(c.Args[0] == "on"); err != nil {
				c.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "write",
		Help: "write <register 4xxxx> <value>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(errors.New("usage: write <register> <value>"))
				return
			}
			register, err := strconv.ParseUint(c.Args[0], 10, 16)
			if err != nil {
				c.Err(err)
				return
			}
			value, err := strconv.Atoi(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			if err := client.WriteRegister(uint16(register), value); err != nil {
				c.Err(err)
				return
			}
			c.Printf("%d <- %d\n", register, value)
		},
	})

	shell.Start()
}

func printJSON(c *ishell.Context, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(data))
}
