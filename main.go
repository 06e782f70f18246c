package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"voicetyper/audio"
	"voicetyper/config"
	"voicetyper/hotkey"
	"voicetyper/log"
	"voicetyper/models"
	"voicetyper/permissions"
	"voicetyper/transcriber"
	"voicetyper/tray"
	"voicetyper/typer"
)

var version = "dev"

func run() {
	hotkeyFlag := flag.String("hotkey", "", "Push-to-talk key (e.g. "+strings.Join(hotkey.Names(), ", ")+")")
	modelFlag := flag.String("model", "", "Speech model id (e.g. base.en, large-v3-turbo)")
	langFlag := flag.String("lang", "", "Language code for transcription (e.g. en, de). Empty = auto-detect")
	verboseFlag := flag.Bool("verbose", false, "Enable debug logging")
	noTrayFlag := flag.Bool("no-tray", false, "Run headless without the tray icon")
	configFlag := flag.String("config", "", "Config file path (default: OS-specific location)")
	typeDelayFlag := flag.Duration("type-delay", 0, "Extra pause between injected keystrokes (e.g. 2ms)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("voicetyper %s\n", version)
		os.Exit(0)
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	modelDir, err := models.CacheDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// First launch with no config: pick and fetch a model interactively,
	// unless flags already pin one.
	if !config.Exists(cfgPath) && *modelFlag == "" {
		if err := firstRunSetup(cfgPath, modelDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: setup incomplete: %v\n", err)
		}
	}

	cfg, loadErr := config.Load(cfgPath)

	var ov config.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hotkey":
			ov.Hotkey = *hotkeyFlag
		case "model":
			ov.Model = *modelFlag
		case "lang":
			ov.Language = *langFlag
		case "verbose":
			v := *verboseFlag
			ov.Verbose = &v
		}
	})
	cfg = cfg.Override(ov)

	log.Init(cfg.Verbose)
	if loadErr != nil {
		log.Warnf("using defaults: %v", loadErr)
	}

	if _, ok := models.Lookup(cfg.Model); !ok {
		log.Warnf("unknown model %q, using %s", cfg.Model, config.DefaultModel)
		cfg.Model = config.DefaultModel
	}

	perms := permissions.Probe()
	warnings := perms.Warnings()

	// Startup failures below degrade instead of exiting: the app comes up
	// with whatever works and surfaces the rest as warnings.
	dev, err := audio.OpenDevice(audio.CaptureConfig{
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
	})
	if err != nil {
		log.Warnf("open capture device: %v", err)
		warnings = append(warnings, "microphone unavailable")
		dev = audio.Unavailable(err)
	}
	rec := audio.NewRecorder(dev)

	ty, err := typer.New(*typeDelayFlag)
	if err != nil {
		log.Warnf("keystroke injection unavailable, transcriptions will be dropped: %v", err)
		ty = typer.Noop{}
	}

	var sink statusSink = traySink{}
	if *noTrayFlag {
		sink = nopSink{}
	}

	factory := func(modelPath, language string) transcriber.Transcriber {
		return transcriber.NewWhisper(modelPath, language)
	}
	transport := models.NewHTTPTransport(modelDir)
	o := newOrchestrator(cfg, cfgPath, modelDir, rec, transport, ty, factory, sink)

	listener, err := hotkey.NewListener(cfg.Hotkey, o.onPress, o.onRelease)
	if err != nil {
		log.Warnf("hotkey %q not usable here, falling back to %s: %v", cfg.Hotkey, hotkey.FallbackName, err)
		listener, err = hotkey.NewListener(hotkey.FallbackName, o.onPress, o.onRelease)
	}
	if err == nil {
		o.listener = listener
		err = listener.Start()
	}
	if err != nil {
		log.Warnf("hotkey listener unavailable, dictation disabled: %v", err)
		warnings = append(warnings, "hotkey unavailable")
	}

	for _, w := range warnings {
		log.Warnf("%s", w)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutting down")
		o.quit()
	}()

	o.start()
	go o.run()

	log.Infof("voicetyper %s ready, hold %s to dictate", version, cfg.Hotkey)

	if *noTrayFlag {
		<-o.done
		return
	}

	tray.OnQuit(o.quit)
	tray.OnSelectModel(o.selectModel)
	if len(warnings) > 0 {
		tray.SetPermissionWarning(strings.Join(warnings, "; "))
	}
	go func() {
		<-o.done
		tray.Quit()
	}()
	tray.Run(func() { log.Debugf("tray ready") })
	<-o.done
	// systray exposes no teardown-complete signal; give its native
	// shutdown a moment before the process exits.
	time.Sleep(50 * time.Millisecond)
}
