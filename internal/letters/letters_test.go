package letters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T) *Registry {
	t.Helper()
	r, err := Load()
	require.NoError(t, err)
	return r
}

func validSKTM() Input {
	return Input{
		Fields: map[string]string{
			"nama":          " Budi Santoso ",
			"nik":           "1801010101010001",
			"tempat_lahir":  "Lampung",
			"tanggal_lahir": "1990-04-12",
			"jenis_kelamin": "Laki-laki",
			"warga_negara":  "Indonesia",
			"agama":         "Islam",
			"pekerjaan":     "Petani",
			"ponsel":        "081234567890",
			"desa":          "Way Galih",
			"dusun":         "3",
			"rt_rw":         "001/002",
			"kecamatan":     "Tanjung Bintang",
			"kabupaten":     "Lampung Selatan",
			"bukan_field":   "dibuang",
		},
		Files: map[string]string{"ktp": "ktp.JPG", "kk": "/tmp/kk.pdf"},
	}
}

func TestLoadEmbeddedSchemas(t *testing.T) {
	r := load(t)
	require.Len(t, r.All(), 3)

	l, ok := r.Get("domisili-perusahaan")
	require.True(t, ok)
	assert.Equal(t, "Surat Keterangan Domisili Perusahaan", l.Title)
	assert.Len(t, l.Sections, 4)

	sekolah, ok := r.Get("sktm-sekolah")
	require.True(t, ok)
	for _, f := range sekolah.Fields() {
		if f.Type == TypeFile {
			assert.Equal(t, ".jpg,.jpeg,.png,.pdf", f.Accept, f.Name)
		}
	}

	_, ok = r.Get("surat-nikah")
	assert.False(t, ok)
}

func TestParseRejectsBrokenSchemas(t *testing.T) {
	cases := map[string]string{
		"duplicate slug": `
letters:
  - {slug: a, title: A}
  - {slug: a, title: B}`,
		"unknown type": `
letters:
  - slug: a
    title: A
    sections: [{title: S, fields: [{name: x, label: X, type: color}]}]`,
		"select without options": `
letters:
  - slug: a
    title: A
    sections: [{title: S, fields: [{name: x, label: X, type: select}]}]`,
		"duplicate field": `
letters:
  - slug: a
    title: A
    sections: [{title: S, fields: [{name: x, label: X, type: text}, {name: x, label: Y, type: text}]}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestValidateAcceptsCompleteSKTM(t *testing.T) {
	r := load(t)
	l, _ := r.Get("sktm")

	v, err := r.Validate(l, validSKTM())
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", v.Fields["nama"])
	assert.NotContains(t, v.Fields, "bukan_field")
	assert.Equal(t, map[string]string{"ktp": "ktp.JPG", "kk": "kk.pdf"}, v.Lampiran)
}

func TestValidateReportsIndonesianMessages(t *testing.T) {
	r := load(t)
	l, _ := r.Get("sktm")

	in := validSKTM()
	in.Fields["nama"] = "   "
	in.Fields["nik"] = "12345"
	in.Fields["ponsel"] = "0712345678901"
	in.Fields["tanggal_lahir"] = "12/04/1990"
	in.Fields["agama"] = "Lainnya"
	in.Files["ktp"] = "ktp.exe"
	delete(in.Files, "kk")

	_, err := r.Validate(l, in)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Nama Lengkap wajib diisi", verr.Fields["nama"])
	assert.Equal(t, "NIK harus 16 digit", verr.Fields["nik"])
	assert.Equal(t, "Nomor Ponsel harus diawali 08", verr.Fields["ponsel"])
	assert.Equal(t, "Tanggal Lahir harus berupa tanggal (YYYY-MM-DD)", verr.Fields["tanggal_lahir"])
	assert.Contains(t, verr.Fields["agama"], "harus salah satu: Islam, Kristen")
	assert.Equal(t, "Unggah KTP harus berkas .jpg, .jpeg, .png, .pdf", verr.Fields["ktp"])
	assert.Equal(t, "Unggah Kartu Keluarga (KK) wajib diisi", verr.Fields["kk"])
	assert.Len(t, verr.Fields, 7)
}

func TestValidateTelLength(t *testing.T) {
	r := load(t)
	l, _ := r.Get("domisili-perusahaan")
	in := Input{
		Fields: map[string]string{
			"nama_lembaga": "Koperasi Tani", "bidang_kegiatan": "Pertanian", "tahun_berdiri": "2010",
			"alamat_lembaga": "Jl. Raya", "rt_rw": "001/001", "desa_lembaga": "Way Galih",
			"kecamatan_lembaga": "Tanjung Bintang", "kabupaten_lembaga": "Lampung Selatan",
			"nama_pendiri": "Pak Joko", "ponsel": "0812345",
		},
		Files: map[string]string{"ktp_pendiri": "ktp.png"},
	}
	_, err := r.Validate(l, in)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Nomor Ponsel minimal 11 digit", verr.Fields["ponsel"])

	in.Fields["ponsel"] = "08123456789"
	v, err := r.Validate(l, in)
	require.NoError(t, err)
	assert.NotContains(t, v.Lampiran, "akta_lembaga")
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "B salah", "a": "A salah"}}
	assert.Equal(t, "A salah; B salah", err.Error())
}
