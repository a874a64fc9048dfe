package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/swdee/go-tagtrack"
	"github.com/swdee/go-tagtrack/camera/cvcamera"
	"github.com/swdee/go-tagtrack/config"
	"github.com/swdee/go-tagtrack/detect"
	"github.com/swdee/go-tagtrack/pose"
	"github.com/swdee/go-tagtrack/preprocess"
	"github.com/swdee/go-tagtrack/record"
	"github.com/swdee/go-tagtrack/render"
	"gocv.io/x/gocv"
)

// Timing is a struct to hold timers used for finding execution time
// for various parts of the process
type Timing struct {
	ProcessStart time.Time
	DetectStart  time.Time
	DetectEnd    time.Time
	TrackEnd     time.Time
	ProcessEnd   time.Time
}

// PoseReport is the JSON body returned by the /pose endpoint
type PoseReport struct {
	ID       int     `json:"id"`
	Name     string  `json:"name,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	Fresh    bool    `json:"fresh"`
	Frame    int     `json:"frame"`
	Age      int     `json:"age"`
	Seen     bool    `json:"seen"`
	Logging  bool    `json:"logging"`
	LogRows  int     `json:"log_rows"`
	Received string  `json:"received"`
}

// Options are the command line settings of the demo
type Options struct {
	Source       string
	TargetID     int
	Names        string
	CSVFile      string
	LogOnStart   bool
	PreviewScale float64
	SnapDir      string
	SwapRB       bool
	TrailSize    int
	FontFile     string
	Verbose      bool
	// Stale logs the last known pose on frames the target was missed,
	// once it has been seen
	Stale bool
	// ShowRejected outlines the candidates the detector rejected
	ShowRejected bool
}

// Demo defines the struct for running the marker tracking demo
type Demo struct {
	opts     Options
	cfg      *config.Config
	video    *gocv.VideoCapture
	detector *detect.Detector
	tracker  *pose.Tracker
	closeCam func() error
	state    *pose.State
	trail    *pose.Trail
	recorder *record.Recorder
	resizer  *preprocess.Resizer
	banner   *render.Banner
	snaps    *record.Snapshots
	names    map[int]string
	style    render.MarkerStyle

	// snapNext requests the next frame be saved as a snapshot
	snapNext chan struct{}

	mu     sync.Mutex
	report PoseReport
	// clients receive each encoded preview frame
	clients map[chan []byte]struct{}
}

// NewDemo returns an instance of Demo, a streaming HTTP server showing the
// camera video with the tracked marker pose
func NewDemo(cfg *config.Config, opts Options) (*Demo, error) {

	d := &Demo{
		opts:     opts,
		cfg:      cfg,
		state:    pose.NewState(),
		trail:    pose.NewTrail(opts.TrailSize),
		style:    render.DefaultMarkerStyle(),
		snapNext: make(chan struct{}, 1),
		clients:  make(map[chan []byte]struct{}),
		names:    make(map[int]string),
	}

	var err error

	d.tracker, d.closeCam, err = cvcamera.Tracker(cfg)

	if err != nil {
		return nil, fmt.Errorf("Error creating tracker: %w", err)
	}

	d.detector, err = detect.NewDetector(cfg.Dictionary)

	if err != nil {
		d.Close()
		return nil, fmt.Errorf("Error creating detector: %w", err)
	}

	if opts.Names != "" {
		d.names, err = tagtrack.LoadMarkerNames(opts.Names)

		if err != nil {
			d.Close()
			return nil, fmt.Errorf("Error loading marker names: %w", err)
		}
	}

	d.banner = render.NewBanner(nil)

	if opts.FontFile != "" {
		face, err := render.LoadFontFace(opts.FontFile, 14)

		if err != nil {
			d.Close()
			return nil, err
		}

		d.banner = render.NewBanner(face)
	}

	if opts.CSVFile != "" {
		d.recorder, err = record.NewRecorder(opts.CSVFile, opts.LogOnStart)

		if err != nil {
			d.Close()
			return nil, err
		}
	}

	if opts.SnapDir != "" {
		if err := os.MkdirAll(opts.SnapDir, 0o755); err != nil {
			d.Close()
			return nil, fmt.Errorf("Error creating snapshot directory: %w", err)
		}

		d.snaps = record.NewSnapshots(opts.SnapDir)
	}

	d.video, err = openSource(opts.Source)

	if err != nil {
		d.Close()
		return nil, fmt.Errorf("Error opening video source: %w", err)
	}

	return d, nil
}

// openSource opens a camera device when the source is a number, otherwise a
// video file or stream URL
func openSource(src string) (*gocv.VideoCapture, error) {

	if dev, err := strconv.Atoi(src); err == nil {
		return gocv.OpenVideoCapture(dev)
	}

	return gocv.VideoCaptureFile(src)
}

// Close frees all resources held by the demo
func (d *Demo) Close() {

	if d.video != nil {
		d.video.Close()
	}

	if d.detector != nil {
		d.detector.Close()
	}

	if d.closeCam != nil {
		if err := d.closeCam(); err != nil {
			log.Printf("Error closing undistorter: %v", err)
		}
	}

	if d.recorder != nil {
		if err := d.recorder.Close(); err != nil {
			log.Printf("Error closing pose log: %v", err)
		}

		log.Printf("Wrote %d pose log rows to %s", d.recorder.Rows(), d.opts.CSVFile)
	}
}

// Run reads frames from the video source until the context is cancelled or
// the source is exhausted
func (d *Demo) Run(ctx context.Context) error {

	img := gocv.NewMat()
	defer img.Close()

	swapped := gocv.NewMat()
	defer swapped.Close()

	preview := gocv.NewMat()
	defer preview.Close()

	// used for calculating FPS
	frameCount := 0
	startTime := time.Now()
	fps := float64(0)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if ok := d.video.Read(&img); !ok {
			return fmt.Errorf("video source closed")
		}

		if img.Empty() {
			continue
		}

		frame := img

		if d.opts.SwapRB {
			preprocess.SwapRB(img, &swapped)
			frame = swapped
		}

		if d.resizer == nil || d.resizer.SrcWidth() != frame.Cols() || d.resizer.SrcHeight() != frame.Rows() {
			d.resizer = preprocess.NewResizer(frame.Cols(), frame.Rows(), d.opts.PreviewScale)
			log.Printf("Frame size %dx%d, preview %dx%d", frame.Cols(), frame.Rows(),
				d.resizer.DestWidth(), d.resizer.DestHeight())
		}

		buf, err := d.ProcessFrame(frame, &preview, fps)

		if err != nil {
			log.Printf("Error occured during ProcessFrame: %v", err)
			continue
		}

		d.broadcast(buf)

		// calculate FPS
		frameCount++
		elapsed := time.Since(startTime).Seconds()

		if elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			startTime = time.Now()
		}
	}
}

// ProcessFrame detects the markers in a frame, updates the target pose and
// log and returns the annotated preview encoded as a JPG file
func (d *Demo) ProcessFrame(frame gocv.Mat, preview *gocv.Mat, fps float64) ([]byte, error) {

	timing := &Timing{
		ProcessStart: time.Now(),
	}

	timing.DetectStart = time.Now()
	observations, err := d.detector.Detect(frame)
	timing.DetectEnd = time.Now()

	if err != nil {
		return nil, err
	}

	target := d.opts.TargetID
	p, fresh := d.state.Step(d.tracker, observations, target)
	timing.TrackEnd = time.Now()

	if fresh {
		d.trail.Add(target, p)
	}

	policy := record.LogFresh

	if d.opts.Stale {
		policy = record.LogEveryFrame
	}

	_, seen := d.state.LastSeen(target)
	emit := policy.Wants(fresh, seen)

	if emit && d.opts.Verbose {
		log.Printf("ID = %d %s", target, p)
	}

	if d.recorder != nil && emit {
		_, err := d.recorder.Record(record.NewEntry(target, p, d.state.Frame(), time.Now()))

		if err != nil {
			log.Printf("Error writing pose log: %v", err)
		}
	}

	d.updateReport(p, fresh)
	d.snapshot(frame)

	d.resizer.Resize(frame, preview)
	d.annotate(preview, observations, fps, timing)

	timing.ProcessEnd = time.Now()

	// Encode the image to JPEG format
	nbuf, err := gocv.IMEncode(".jpg", *preview)

	if err != nil {
		return nil, err
	}

	defer nbuf.Close()

	out := make([]byte, nbuf.Len())
	copy(out, nbuf.GetBytes())

	return out, nil
}

// annotate draws every observed marker, the target trail and the status
// banner on the preview image
func (d *Demo) annotate(img *gocv.Mat, observations []pose.Observation,
	fps float64, timing *Timing) {

	scale := d.resizer.ScaleFactor()

	if d.opts.ShowRejected {
		render.Candidates(img, d.detector.Rejected, scale, render.Grey, 1)
	}

	for _, obs := range observations {

		p, err := d.tracker.Resolve(obs)

		if err != nil {
			continue
		}

		render.Marker(img, obs, p, d.names[obs.ID], scale, d.style)
	}

	render.Trail(img, []int{d.opts.TargetID}, d.trail, scale, render.DefaultTrailStyle())

	status := "not logging"

	if d.recorder != nil && d.recorder.Active() {
		status = fmt.Sprintf("logging %d rows", d.recorder.Rows())
	}

	lines := []string{
		fmt.Sprintf("Frame: %d, FPS: %.2f, Markers: %d", d.state.Frame(), fps, len(observations)),
		fmt.Sprintf("Detect: %.2fms, Track: %.2fms, %s",
			float32(timing.DetectEnd.Sub(timing.DetectStart))/float32(time.Millisecond),
			float32(timing.TrackEnd.Sub(timing.DetectEnd))/float32(time.Millisecond),
			status,
		),
	}

	if p, ok := d.state.Pose(d.opts.TargetID); ok {
		lines = append(lines, fmt.Sprintf("ID = %d %s", d.opts.TargetID, p))
	}

	if err := d.banner.Draw(img, lines); err != nil {
		log.Printf("Error drawing banner: %v", err)
	}
}

// snapshot saves the full resolution frame when one has been requested
func (d *Demo) snapshot(frame gocv.Mat) {

	if d.snaps == nil {
		return
	}

	select {
	case <-d.snapNext:
	default:
		return
	}

	file := d.snaps.Next()

	if ok := gocv.IMWrite(file, frame); !ok {
		log.Printf("Error saving snapshot %s", file)
		return
	}

	log.Printf("Saved snapshot %s", file)
}

func (d *Demo) updateReport(p pose.Pose, fresh bool) {

	id := d.opts.TargetID
	age, seen := d.state.Age(id)

	rep := PoseReport{
		ID:       id,
		Name:     d.names[id],
		X:        p.X,
		Y:        p.Y,
		Angle:    p.Angle,
		Fresh:    fresh,
		Frame:    d.state.Frame(),
		Age:      age,
		Seen:     seen,
		Received: time.Now().UTC().Format(time.RFC3339Nano),
	}

	if d.recorder != nil {
		rep.Logging = d.recorder.Active()
		rep.LogRows = d.recorder.Rows()
	}

	d.mu.Lock()
	d.report = rep
	d.mu.Unlock()
}

// broadcast sends the encoded frame to each connected client, clients that
// have not consumed their previous frame skip this one
func (d *Demo) broadcast(buf []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for ch := range d.clients {
		select {
		case ch <- buf:
		default:
		}
	}
}

func (d *Demo) subscribe() chan []byte {
	ch := make(chan []byte, 1)

	d.mu.Lock()
	d.clients[ch] = struct{}{}
	d.mu.Unlock()

	return ch
}

func (d *Demo) unsubscribe(ch chan []byte) {
	d.mu.Lock()
	delete(d.clients, ch)
	d.mu.Unlock()
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	log.Printf("New client connection established\n")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	ch := d.subscribe()
	defer d.unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected\n")
			return

		case buf := <-ch:
			// Write the image to the response writer
			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
			w.Write(buf)
			w.Write([]byte("\r\n"))

			// Flush the buffer
			flusher, ok := w.(http.Flusher)
			if ok {
				flusher.Flush()
			}
		}
	}
}

// Pose is the HTTP handler returning the latest pose of the target as JSON
func (d *Demo) Pose(w http.ResponseWriter, r *http.Request) {

	d.mu.Lock()
	rep := d.report
	d.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(rep); err != nil {
		log.Printf("Error encoding pose: %v", err)
	}
}

// LogControl returns the HTTP handler that starts or stops pose logging
func (d *Demo) LogControl(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if d.recorder == nil {
			http.Error(w, "pose logging not configured, start with -csv", http.StatusConflict)
			return
		}

		if err := d.recorder.SetActive(active); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Printf("Pose logging active: %v", active)
		fmt.Fprintf(w, "logging=%v rows=%d\n", active, d.recorder.Rows())
	}
}

// Snap is the HTTP handler requesting a snapshot of the next frame
func (d *Demo) Snap(w http.ResponseWriter, r *http.Request) {

	if d.snaps == nil {
		http.Error(w, "snapshots not configured, start with -snap", http.StatusConflict)
		return
	}

	select {
	case d.snapNext <- struct{}{}:
	default:
	}

	w.WriteHeader(http.StatusAccepted)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	cfgFile := flag.String("c", "", "JSON configuration file, defaults to the built in arena calibration")
	source := flag.String("v", "0", "Camera device number or video file to track markers in")
	httpAddr := flag.String("a", "localhost:8080", "HTTP Address to run server on, format address:port")
	targetID := flag.Int("id", -1, "Marker id to track, overrides the configuration target_id")
	cpus := flag.String("cpus", "", "Comma delimited list of CPU cores to run on, eg: 4-7")
	csvFile := flag.String("csv", "", "CSV file to log the target pose to")
	logStart := flag.Bool("log", false, "Start logging the pose immediately instead of waiting for /log/start")
	namesFile := flag.String("n", "", "Text file of marker names, one 'id name' per line")
	scale := flag.Float64("s", preprocess.DefaultPreviewScale, "Scale factor of the preview stream")
	snapDir := flag.String("snap", "", "Directory to save frame snapshots requested at /snap")
	swap := flag.Bool("swap", false, "Swap the red and blue channels of camera frames")
	trailSize := flag.Int("trail", 90, "Number of past positions drawn as the marker trail")
	fontFile := flag.String("font", "", "TTF font file for the status banner")
	verbose := flag.Bool("verbose", false, "Print the target pose of every frame")
	stale := flag.Bool("stale", false, "Log and print the last known pose on frames the target is missed")
	rejected := flag.Bool("rejected", false, "Outline marker candidates rejected by the detector")

	flag.Parse()

	if *cpus != "" {
		cores, err := tagtrack.ParseCoreList(*cpus)

		if err != nil {
			log.Fatalf("Invalid -cpus: %v", err)
		}

		if err := tagtrack.SetCPUAffinity(tagtrack.CPUCoreMask(cores)); err != nil {
			log.Printf("Failed to set CPU Affinity: %v", err)
		}
	}

	cfg := config.Default()

	if *cfgFile != "" {
		var err error
		cfg, err = config.Load(*cfgFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	if *targetID >= 0 {
		cfg.TargetID = *targetID
	}

	demo, err := NewDemo(cfg, Options{
		Source:       *source,
		TargetID:     cfg.TargetID,
		Names:        *namesFile,
		CSVFile:      *csvFile,
		LogOnStart:   *logStart,
		PreviewScale: *scale,
		SnapDir:      *snapDir,
		SwapRB:       *swap,
		TrailSize:    *trailSize,
		FontFile:     *fontFile,
		Verbose:      *verbose,
		Stale:        *stale,
		ShowRejected: *rejected,
	})

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	defer demo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", demo.Stream)
	mux.HandleFunc("/pose", demo.Pose)
	mux.HandleFunc("/log/start", demo.LogControl(true))
	mux.HandleFunc("/log/stop", demo.LogControl(false))
	mux.HandleFunc("/snap", demo.Snap)

	srv := &http.Server{Addr: *httpAddr, Handler: mux}

	go func() {
		// start http server
		log.Printf("Open browser and view video at http://%s/stream", *httpAddr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	edge := demo.tracker.Edge()
	log.Printf("Tracking marker %d with dictionary %s, heading from corner %d to %d",
		cfg.TargetID, cfg.Dictionary, edge.Tail, edge.Head)

	if err := demo.Run(ctx); err != nil {
		log.Printf("Tracking stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
}
