package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/waygalih/suratdesa/internal/letters"
	"github.com/waygalih/suratdesa/internal/models"
)

var (
	firstNames = []string{"Budi", "Siti", "Agus", "Dewi", "Joko", "Sri", "Andi", "Rina", "Eko", "Wati", "Hendra", "Yuni", "Slamet", "Ayu", "Rudi", "Nur", "Bambang", "Lestari", "Wahyu", "Fitri"}
	lastNames  = []string{"Santoso", "Rahayu", "Saputra", "Wulandari", "Pratama", "Lestari", "Hidayat", "Kusuma", "Setiawan", "Purnama", "Gunawan", "Suryani", "Nugroho", "Handayani", "Firmansyah"}
	birthplace = []string{"Lampung Selatan", "Bandar Lampung", "Metro", "Pringsewu", "Pesawaran", "Palembang", "Jakarta"}
	jobs       = []string{"Petani", "Buruh Harian Lepas", "Pedagang", "Wiraswasta", "Ibu Rumah Tangga", "Pelajar", "Belum Bekerja"}
	fields     = []string{"Pertanian", "Perdagangan", "Simpan Pinjam", "Peternakan", "Pendidikan"}
	orgNames   = []string{"Koperasi Tani Makmur", "Kelompok Ternak Sejahtera", "CV Way Galih Jaya", "BUMDes Way Galih", "Yayasan Pelita Desa"}
	reasons    = []string{"Berkas KTP tidak terbaca", "NIK tidak sesuai KK", "Surat pengantar RT belum dilampirkan", "Data alamat tidak lengkap"}
)

// demoGen builds synthetic submissions that pass the letter form checks.
type demoGen struct {
	rng     *rand.Rand
	reg     *letters.Registry
	owners  int
	now     time.Time
	maxDays int
}

func newDemoGen(seed int64, reg *letters.Registry, owners int, now time.Time) *demoGen {
	if owners < 1 {
		owners = 1
	}
	return &demoGen{rng: rand.New(rand.NewSource(seed)), reg: reg, owners: owners, now: now, maxDays: 90}
}

func (g *demoGen) pick(list []string) string {
	return list[g.rng.Intn(len(list))]
}

func (g *demoGen) digits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + g.rng.Intn(10)))
	}
	return b.String()
}

func (g *demoGen) randomDate(minYear, maxYear int) string {
	year := minYear + g.rng.Intn(maxYear-minYear+1)
	month := 1 + g.rng.Intn(12)
	day := 1 + g.rng.Intn(28)
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func (g *demoGen) person() string {
	return g.pick(firstNames) + " " + g.pick(lastNames)
}

func (g *demoGen) text(f letters.Field) string {
	switch {
	case f.Name == "nama_lembaga":
		return g.pick(orgNames)
	case strings.Contains(f.Name, "nama"):
		return g.person()
	case strings.HasPrefix(f.Name, "tempat") || f.Name == "ortu_tempat":
		return g.pick(birthplace)
	case strings.Contains(f.Name, "pekerjaan"):
		return g.pick(jobs)
	case f.Name == "bidang_kegiatan":
		return g.pick(fields)
	case f.Name == "rt_rw":
		return fmt.Sprintf("%03d/%03d", 1+g.rng.Intn(12), 1+g.rng.Intn(6))
	case f.Name == "warga_negara":
		return "Indonesia"
	case strings.HasPrefix(f.Name, "desa"):
		return "Way Galih"
	case strings.HasPrefix(f.Name, "kecamatan"):
		return "Tanjung Bintang"
	case strings.HasPrefix(f.Name, "kabupaten"):
		return "Lampung Selatan"
	default:
		return f.Label
	}
}

func (g *demoGen) input(l *letters.Letter) letters.Input {
	in := letters.Input{Fields: map[string]string{}, Files: map[string]string{}}
	for _, f := range l.Fields() {
		switch f.Type {
		case letters.TypeText:
			in.Fields[f.Name] = g.text(f)
		case letters.TypeTextarea:
			in.Fields[f.Name] = fmt.Sprintf("Dusun %d, Desa Way Galih", 1+g.rng.Intn(10))
		case letters.TypeNumber:
			in.Fields[f.Name] = fmt.Sprint(1990 + g.rng.Intn(34))
		case letters.TypeDate:
			in.Fields[f.Name] = g.randomDate(1960, 2012)
		case letters.TypeNIK:
			in.Fields[f.Name] = "1801" + g.digits(12)
		case letters.TypeTel:
			in.Fields[f.Name] = "08" + g.digits(10)
		case letters.TypeSelect:
			in.Fields[f.Name] = g.pick(f.Options)
		case letters.TypeFile:
			if f.Required || g.rng.Intn(2) == 0 {
				ext := ".jpg"
				if g.rng.Intn(3) == 0 {
					ext = ".pdf"
				}
				in.Files[f.Name] = f.Name + ext
			}
		}
	}
	return in
}

func (g *demoGen) status() models.Status {
	switch n := g.rng.Intn(10); {
	case n < 5:
		return models.Pending()
	case n < 8:
		return models.Completed()
	default:
		return models.Rejected(g.pick(reasons))
	}
}

// submission returns the i-th synthetic record.
func (g *demoGen) submission(i int) (models.Submission, error) {
	all := g.reg.All()
	l := &all[g.rng.Intn(len(all))]
	v, err := g.reg.Validate(l, g.input(l))
	if err != nil {
		return models.Submission{}, fmt.Errorf("demo record %d (%s): %w", i, l.Slug, err)
	}
	if g.rng.Intn(5) == 0 {
		v.Fields["catatan"] = "Mohon segera diproses"
	}
	at := g.now.Add(-time.Duration(g.rng.Int63n(int64(g.maxDays) * int64(24*time.Hour))))
	sub := models.Submission{
		UserID:           fmt.Sprintf("demo-warga-%03d", g.rng.Intn(g.owners)),
		JenisSurat:       l.Title,
		Status:           g.status(),
		TanggalPengajuan: models.NewTimestamp(at.UTC()),
		Fields:           v.Fields,
	}
	if len(v.Lampiran) > 0 {
		sub.Lampiran = v.Lampiran
	}
	return sub, nil
}

func (g *demoGen) batch(start, n int) ([]models.Submission, error) {
	out := make([]models.Submission, n)
	for j := 0; j < n; j++ {
		sub, err := g.submission(start + j)
		if err != nil {
			return nil, err
		}
		out[j] = sub
	}
	return out, nil
}
