package tagging

import (
	"fmt"

	"github.com/bogem/id3v2/v2"

	"vistopia/internal/services"
)

// websiteFrameID is the "official audio file webpage" URL frame.
const websiteFrameID = "WOAR"

// Fields are the tag values written for one episode.
type Fields struct {
	Title   string
	Album   string
	Artist  string
	Track   string
	Website string
}

// WriteTags sets title, album, artist, track number and website on the file
// at path, creating a tag when the file has none.
func WriteTags(path string, fields Fields) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return services.Wrap(services.ErrTagWrite, "tagging", "open", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(fields.Title)
	tag.SetAlbum(fields.Album)
	tag.SetArtist(fields.Artist)
	if fields.Track != "" {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), id3v2.EncodingUTF8, fields.Track)
	}
	tag.DeleteFrames(websiteFrameID)
	if fields.Website != "" {
		tag.AddFrame(websiteFrameID, id3v2.UnknownFrame{Body: []byte(fields.Website)})
	}

	if err := tag.Save(); err != nil {
		return services.Wrap(services.ErrTagWrite, "tagging", "save", path, err)
	}
	return nil
}

// ReadTags returns the tag values currently stored in the file at path.
func ReadTags(path string) (Fields, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Fields{}, fmt.Errorf("open tag %s: %w", path, err)
	}
	defer tag.Close()

	fields := Fields{
		Title:  tag.Title(),
		Album:  tag.Album(),
		Artist: tag.Artist(),
	}
	if frame := tag.GetTextFrame(tag.CommonID("Track number/Position in set")); frame.Text != "" {
		fields.Track = frame.Text
	}
	for _, framer := range tag.GetFrames(websiteFrameID) {
		if unknown, ok := framer.(id3v2.UnknownFrame); ok {
			fields.Website = string(unknown.Body)
			break
		}
	}
	return fields, nil
}

// ReadCover returns the front cover embedded in the file at path, if any.
func ReadCover(path string) ([]byte, string, bool, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, "", false, fmt.Errorf("open tag %s: %w", path, err)
	}
	defer tag.Close()
	for _, framer := range tag.GetFrames(tag.CommonID("Attached picture")) {
		if pic, ok := framer.(id3v2.PictureFrame); ok && pic.PictureType == id3v2.PTFrontCover {
			return pic.Picture, pic.MimeType, true, nil
		}
	}
	return nil, "", false, nil
}
