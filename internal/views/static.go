package views

import "net/http"

func serveCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	w.Write([]byte(`body{font-family:system-ui,Segoe UI,Roboto,Arial,sans-serif;margin:0;background:#f7f7f7;color:#1a1a1a}
a{color:#2f855a;text-decoration:none} a:hover{text-decoration:underline}
header{padding:12px 20px;border-bottom:1px solid #e2e8f0;background:#276749}
header a{color:#f0fff4}
.nav{display:flex;justify-content:space-between;align-items:center}
.nav-links a{margin-left:16px}
.brand{font-weight:700;font-size:1.2em}
.container{max-width:1100px;margin:0 auto;padding:20px}
table{width:100%;border-collapse:collapse;border:1px solid #e2e8f0;background:#fff}
th,td{padding:10px;border-bottom:1px solid #e2e8f0} th{text-align:left;background:#f0fff4}
.btn{display:inline-block;padding:8px 12px;border:1px solid #cbd5e0;background:#fff;color:#1a1a1a;border-radius:6px;cursor:pointer}
.btn-primary{background:#2f855a;border-color:#2f855a;color:#fff}
input,textarea,select{width:100%;padding:8px;background:#fff;color:#1a1a1a;border:1px solid #cbd5e0;border-radius:6px}
.grid{display:grid;gap:16px} .cols-2{grid-template-columns:1fr 1fr} .cols-3{grid-template-columns:1fr 1fr 1fr}
.card{border:1px solid #e2e8f0;border-radius:10px;padding:16px;background:#fff}
h1,h2,h3{margin:12px 0}
.small{opacity:.7} .mono{font-family:ui-monospace,Menlo,Consolas,monospace}`))
}

func serveJS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Write([]byte(`async function postJSON(url, body, method){const r=await fetch(url,{method:method||'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify(body||{})});return r.json()}
async function postForm(url, form, method){const r=await fetch(url,{method:method||'POST',body:form});return r.json()}

const loginForm=document.getElementById('login-form');
if(loginForm)loginForm.addEventListener('submit',async e=>{e.preventDefault();
  const f=new FormData(loginForm);
  const res=await postJSON('/api/v1/users/login',{email:f.get('email'),password:f.get('password')});
  if(res.status==='success')location.assign('/');else alert(res.detail||'Login failed')});

const logout=document.getElementById('logout');
if(logout)logout.addEventListener('click',async e=>{e.preventDefault();
  await fetch('/api/v1/users/logout');location.assign('/')});

const accountForm=document.getElementById('account-form');
if(accountForm)accountForm.addEventListener('submit',async e=>{e.preventDefault();
  const res=await postForm('/api/v1/users/updateMe',new FormData(accountForm),'PATCH');
  if(res.status==='success')location.reload();else alert(res.detail||'Update failed')});

const passwordForm=document.getElementById('password-form');
if(passwordForm)passwordForm.addEventListener('submit',async e=>{e.preventDefault();
  const f=new FormData(passwordForm);
  const res=await postJSON('/api/v1/users/updateMyPassword',{passwordCurrent:f.get('passwordCurrent'),password:f.get('password'),passwordConfirm:f.get('password')},'PATCH');
  if(res.status==='success')location.reload();else alert(res.detail||'Update failed')});

const bookBtn=document.getElementById('book-tour');
if(bookBtn)bookBtn.addEventListener('click',async()=>{
  const res=await fetch('/api/v1/bookings/checkout-session/'+bookBtn.dataset.tourId).then(r=>r.json());
  if(res.status==='success')location.assign(res.session.url);else alert(res.detail||'Checkout failed')});
`))
}
