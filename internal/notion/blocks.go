package notion

import "github.com/jomei/notionapi"

// Media kinds understood by the block constructors.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
	MediaPdf   = "pdf"
	MediaFile  = "file"
	MediaEmbed = "embed"
)

// The client library models the audio payload but has no block type
// constant for it.
const blockTypeAudio = notionapi.BlockType("audio")

// FileUploadRef points at a completed upload by its file upload ID.
type FileUploadRef struct {
	ID string `json:"id"`
}

// FileUploadValue is the payload of a media block backed by an upload.
// The client library only models externally hosted media, so blocks that
// reference the file upload API are marshalled through these types.
type FileUploadValue struct {
	Type       string               `json:"type"`
	FileUpload FileUploadRef        `json:"file_upload"`
	Caption    []notionapi.RichText `json:"caption,omitempty"`
}

// UploadedImageBlock is an image block referencing a file upload.
type UploadedImageBlock struct {
	notionapi.BasicBlock
	Image FileUploadValue `json:"image"`
}

// UploadedVideoBlock is a video block referencing a file upload.
type UploadedVideoBlock struct {
	notionapi.BasicBlock
	Video FileUploadValue `json:"video"`
}

// UploadedAudioBlock is an audio block referencing a file upload.
type UploadedAudioBlock struct {
	notionapi.BasicBlock
	Audio FileUploadValue `json:"audio"`
}

// UploadedPdfBlock is a pdf block referencing a file upload.
type UploadedPdfBlock struct {
	notionapi.BasicBlock
	Pdf FileUploadValue `json:"pdf"`
}

// UploadedFileBlock is a generic file block referencing a file upload.
type UploadedFileBlock struct {
	notionapi.BasicBlock
	File FileUploadValue `json:"file"`
}

// NewUploadedBlock builds a media block backed by a completed file
// upload. Unknown kinds fall back to a generic file block.
func NewUploadedBlock(kind, fileUploadID string, caption []notionapi.RichText) notionapi.Block {
	value := FileUploadValue{
		Type:       "file_upload",
		FileUpload: FileUploadRef{ID: fileUploadID},
		Caption:    caption,
	}
	switch kind {
	case MediaImage:
		return &UploadedImageBlock{BasicBlock: basicBlock(notionapi.BlockTypeImage), Image: value}
	case MediaVideo:
		return &UploadedVideoBlock{BasicBlock: basicBlock(notionapi.BlockTypeVideo), Video: value}
	case MediaAudio:
		return &UploadedAudioBlock{BasicBlock: basicBlock(blockTypeAudio), Audio: value}
	case MediaPdf:
		return &UploadedPdfBlock{BasicBlock: basicBlock(notionapi.BlockTypePdf), Pdf: value}
	default:
		return &UploadedFileBlock{BasicBlock: basicBlock(notionapi.BlockTypeFile), File: value}
	}
}

// NewExternalBlock builds a media block pointing at an externally hosted
// URL. The embed kind produces an embed block, everything else the
// matching external file object.
func NewExternalBlock(kind, url string, caption []notionapi.RichText) notionapi.Block {
	external := &notionapi.FileObject{URL: url}
	switch kind {
	case MediaEmbed:
		return &notionapi.EmbedBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeEmbed),
			Embed: notionapi.Embed{
				URL:     url,
				Caption: caption,
			},
		}
	case MediaImage:
		return &notionapi.ImageBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeImage),
			Image: notionapi.Image{
				Type:     notionapi.FileTypeExternal,
				External: external,
				Caption:  caption,
			},
		}
	case MediaVideo:
		return &notionapi.VideoBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeVideo),
			Video: notionapi.Video{
				Type:     notionapi.FileTypeExternal,
				External: external,
				Caption:  caption,
			},
		}
	case MediaAudio:
		return &notionapi.AudioBlock{
			BasicBlock: basicBlock(blockTypeAudio),
			Audio: notionapi.Audio{
				Type:     notionapi.FileTypeExternal,
				External: external,
				Caption:  caption,
			},
		}
	case MediaPdf:
		return &notionapi.PdfBlock{
			BasicBlock: basicBlock(notionapi.BlockTypePdf),
			Pdf: notionapi.Pdf{
				Type:     notionapi.FileTypeExternal,
				External: external,
				Caption:  caption,
			},
		}
	default:
		return &notionapi.FileBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeFile),
			File: notionapi.BlockFile{
				Type:     notionapi.FileTypeExternal,
				External: external,
				Caption:  caption,
			},
		}
	}
}

func basicBlock(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   t,
	}
}
