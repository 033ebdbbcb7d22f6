package mockserver

import (
	"archive/zip"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookfoundry/internal/api"
	"bookfoundry/internal/estimate"
	"bookfoundry/internal/model"
	"bookfoundry/internal/project"
	"bookfoundry/internal/util"
)

// segment is one narrated file of a job.
type segment struct {
	file    string
	text    string
	seconds float64
	chapter bool
}

type job struct {
	id       string
	req      api.RenderJobRequest
	created  time.Time
	folder   string
	segments []segment
	total    float64
	failure  string
}

func (s *Server) createJob(c *gin.Context) {
	var req api.RenderJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Outline) == "" {
		fail(c, http.StatusBadRequest, "Outline is required")
		return
	}
	if len(req.Chapters) == 0 {
		fail(c, http.StatusBadRequest, "Chapters are required")
		return
	}
	if req.Speed == 0 {
		req.Speed = model.DefaultSpeed
	}
	if req.Speed < minSpeed || req.Speed > maxSpeed {
		fail(c, http.StatusBadRequest, "Speed must be between 0.25 and 4.0")
		return
	}

	j := s.newJob(req)
	s.mu.Lock()
	s.jobs[j.id] = j
	s.mu.Unlock()

	s.log.Info("render job accepted", "job_id", j.id, "chapters", len(req.Chapters), "estimated_seconds", j.total)
	c.JSON(http.StatusAccepted, api.RenderJobResponse{JobID: j.id, TotalChapters: len(req.Chapters)})
}

func (s *Server) newJob(req api.RenderJobRequest) *job {
	j := &job{
		id:      uuid.NewString(),
		req:     req,
		created: s.opts.Now(),
		folder:  path.Join("books", project.BaseName(req.Title)+"_complete"),
	}
	if strings.TrimSpace(req.Title) == "" {
		j.folder = path.Join("books", "untitled_complete")
	}
	if !supportedVoice(req.Voice) {
		j.failure = fmt.Sprintf("Voice '%s' is not supported", req.Voice)
	}

	add := func(file, text string, chapter bool) {
		secs := float64(estimate.Seconds(estimate.CountWords(text), req.Speed)) * s.opts.TimeScale
		j.segments = append(j.segments, segment{file: file, text: text, seconds: secs, chapter: chapter})
		j.total += secs
	}
	if req.IncludeOutline {
		add("00_outline.mp3", "Book Outline. "+req.Outline, false)
	}
	for i, ch := range req.Chapters {
		add(fmt.Sprintf("chapter_%02d.mp3", i+1), ch, true)
	}
	return j
}

// status computes the job's state at now. Jobs sit in the queue for
// QueueDelay and then render segment by segment.
func (j *job) status(now time.Time, queue time.Duration) model.JobStatus {
	st := model.JobStatus{Status: model.StatusPending, TotalChapters: len(j.req.Chapters)}
	age := now.Sub(j.created)
	if age < queue {
		return st
	}
	if j.failure != "" {
		st.Status = model.StatusError
		st.Error = model.String(j.failure)
		return st
	}

	run := (age - queue).Seconds()
	if run >= j.total {
		files := make([]string, 0, len(j.segments))
		for _, seg := range j.segments {
			files = append(files, path.Join(j.folder, "audio", seg.file))
		}
		st.Status = model.StatusCompleted
		st.Progress = 100
		st.CompletedChapters = st.TotalChapters
		st.ElapsedSeconds = model.Float(run)
		st.EstimatedSeconds = model.Float(j.total)
		st.Result = &model.ResultPayload{
			Folder:      j.folder,
			AudioFiles:  files,
			DownloadURL: model.String(api.PathRenderJobs + "/" + j.id + "/download"),
		}
		return st
	}

	var done float64
	for _, seg := range j.segments {
		if done+seg.seconds > run {
			break
		}
		done += seg.seconds
		if seg.chapter {
			st.CompletedChapters++
		}
	}
	st.Status = model.StatusRunning
	st.Progress = 100 * float64(st.CompletedChapters) / float64(max(st.TotalChapters, 1))
	st.ElapsedSeconds = model.Float(run)
	st.EstimatedSeconds = model.Float(j.total)
	return st
}

func (s *Server) lookup(c *gin.Context) (*job, bool) {
	s.mu.Lock()
	j, ok := s.jobs[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		fail(c, http.StatusNotFound, "Job not found")
	}
	return j, ok
}

func (s *Server) jobStatus(c *gin.Context) {
	j, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, j.status(s.opts.Now(), s.opts.QueueDelay))
}

// download streams a zip with the book text and one placeholder audio file
// per narrated segment.
func (s *Server) download(c *gin.Context) {
	j, ok := s.lookup(c)
	if !ok {
		return
	}
	if st := j.status(s.opts.Now(), s.opts.QueueDelay); st.Status != model.StatusCompleted {
		fail(c, http.StatusConflict, "Audiobook is not ready")
		return
	}

	base := path.Base(j.folder)
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, base))
	c.Status(http.StatusOK)

	zw := zip.NewWriter(c.Writer)
	book := model.BookProject{Title: j.req.Title, Outline: j.req.Outline, Chapters: j.req.Chapters}
	entries := []struct{ name, body string }{
		{path.Join(base, "text", base+".md"), project.Markdown(book)},
		{path.Join(base, "text", "outline.md"), project.OutlineMarkdown(j.req.Title, j.req.Outline)},
	}
	for i, ch := range j.req.Chapters {
		entries = append(entries, struct{ name, body string }{
			path.Join(base, "text", fmt.Sprintf("chapter_%02d.md", i+1)), project.ChapterMarkdown(i+1, ch),
		})
	}
	for _, seg := range j.segments {
		entries = append(entries, struct{ name, body string }{
			path.Join(base, "audio", seg.file), string(fakeAudio(j.req.Voice, util.CleanForSpeech(seg.text))),
		})
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			s.log.Error("write archive entry", "job_id", j.id, "entry", e.name, "error", err)
			return
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			s.log.Error("write archive entry", "job_id", j.id, "entry", e.name, "error", err)
			return
		}
	}
	if err := zw.Close(); err != nil {
		s.log.Error("finish archive", "job_id", j.id, "error", err)
	}
}
