package domain

type GenerationStatus struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

const StageError = "error"

var (
	StatusLoadingPlan     = GenerationStatus{Stage: "1/4", Message: "Loading lesson plan..."}
	StatusGeneratingMedia = GenerationStatus{Stage: "2/4", Message: "Generating multimedia assets..."}
	StatusUploadingMedia  = GenerationStatus{Stage: "3/4", Message: "Uploading media to cloud..."}
	StatusReady           = GenerationStatus{Stage: "4/4", Message: "Ready!"}
)

func ErrorStatus(message string) GenerationStatus {
	return GenerationStatus{Stage: StageError, Message: message}
}

func (s GenerationStatus) Terminal() bool {
	return s.Stage == StageError || s == StatusReady
}
